package domain

// Category enumerates the fixed set of sections articles are filed under.
type Category string

const (
	CategoryIndia     Category = "india"
	CategoryTelangana Category = "telangana"
	CategoryAndhra    Category = "andhra"
	CategoryBusiness  Category = "business"
	CategorySports    Category = "sports"
	CategoryTech      Category = "tech"
	CategoryPolitics  Category = "politics"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryIndia,
	CategoryTelangana,
	CategoryAndhra,
	CategoryBusiness,
	CategorySports,
	CategoryTech,
	CategoryPolitics,
}

// Valid reports whether c belongs to the fixed category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
