package config

import "TeluguNews/internal/domain"

// DefaultFeeds is the built-in registry of free India RSS feeds.
func DefaultFeeds() []domain.FeedSource {
	return []domain.FeedSource{
		{URL: "https://feeds.feedburner.com/ndtvnews-top-stories", Category: domain.CategoryIndia, Source: "NDTV", Language: "en"},
		{URL: "https://timesofindia.indiatimes.com/rssfeedstopstories.cms", Category: domain.CategoryIndia, Source: "Times of India", Language: "en"},
		{URL: "https://www.hindustantimes.com/feeds/rss/india-news/rssfeed.xml", Category: domain.CategoryIndia, Source: "Hindustan Times", Language: "en"},
		{URL: "https://www.thehindu.com/news/national/?service=rss", Category: domain.CategoryIndia, Source: "The Hindu", Language: "en"},
		{URL: "https://feeds.feedburner.com/ndtvnews-india-news", Category: domain.CategoryIndia, Source: "NDTV India", Language: "en"},
		{URL: "https://www.indiatoday.in/rss/1206578", Category: domain.CategoryIndia, Source: "India Today", Language: "en"},

		// Telugu sources skip translation.
		{URL: "https://www.eenadu.net/rss/telangana-news.xml", Category: domain.CategoryTelangana, Source: "Eenadu", Language: domain.TeluguLanguage},
		{URL: "https://www.sakshi.com/rss.xml", Category: domain.CategoryTelangana, Source: "Sakshi", Language: domain.TeluguLanguage},
		{URL: "https://www.andhrajyothy.com/rss", Category: domain.CategoryAndhra, Source: "Andhra Jyothy", Language: domain.TeluguLanguage},

		{URL: "https://economictimes.indiatimes.com/rssfeedsdefault.cms", Category: domain.CategoryBusiness, Source: "Economic Times", Language: "en"},
		{URL: "https://www.moneycontrol.com/rss/latestnews.xml", Category: domain.CategoryBusiness, Source: "Moneycontrol", Language: "en"},
		{URL: "https://www.livemint.com/rss/news", Category: domain.CategoryBusiness, Source: "LiveMint", Language: "en"},

		{URL: "https://www.espncricinfo.com/rss/content/story/feeds/0.xml", Category: domain.CategorySports, Source: "ESPNCricinfo", Language: "en"},
		{URL: "https://sportstar.thehindu.com/cricket/?service=rss", Category: domain.CategorySports, Source: "Sportstar", Language: "en"},

		{URL: "https://yourstory.com/feed", Category: domain.CategoryTech, Source: "YourStory", Language: "en"},
		{URL: "https://inc42.com/feed/", Category: domain.CategoryTech, Source: "Inc42", Language: "en"},

		{URL: "https://feeds.feedburner.com/ndtvnews-politics-news", Category: domain.CategoryPolitics, Source: "NDTV Politics", Language: "en"},
		{URL: "https://www.thehindu.com/news/national/andhra-pradesh/?service=rss", Category: domain.CategoryAndhra, Source: "The Hindu AP", Language: "en"},
		{URL: "https://www.thehindu.com/news/national/telangana/?service=rss", Category: domain.CategoryTelangana, Source: "The Hindu Telangana", Language: "en"},
	}
}
