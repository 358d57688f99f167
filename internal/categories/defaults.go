package categories

// DefaultRulebook is the built-in keyword rulebook used when the config
// file does not define one. Order matters: the first category whose
// keyword matches a description wins.
func DefaultRulebook() []KeywordRule {
	return []KeywordRule{
		{Category: "Rent", Keywords: []string{"Stein McBride", "ManillaSt"}},
		{Category: "Groceries", Keywords: []string{
			"Tesco", "Sainsbury", "Ocado", "Waitrose", "Lidl", "Aldi",
			"Marks & Spencer", "Tian Tian",
		}},
		{Category: "Dining Out", Keywords: []string{
			"Nandos", "Pizza Hut", "McDonald's", "Uber Eats", "Pret",
			"Coffee", "Tortilla", "Burger King", "Wingstop",
			"Borough Market", "Humble Crumble", "Deliveroo", "Papa John",
		}},
		{Category: "Transport", Keywords: []string{"TFL", "Uber", "Trainline", "Shell", "BP"}},
		{Category: "Shopping", Keywords: []string{
			"Amazon", "Boots", "Apple", "TK Maxx", "Co-op", "M&S",
			"Steam Games", "Electronic Arts",
		}},
		{Category: "Utilities", Keywords: []string{
			"British Gas", "Thames Water", "Council Tax", "Hyperoptic",
			"O2", "Sky",
		}},
		{Category: "Savings", Keywords: []string{"Chase Saver", "Round Up"}},
		{Category: "Credit Cards", Keywords: []string{"American Express", "NewDay"}},
	}
}
