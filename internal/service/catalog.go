package service

// DefaultCatalog is the seed set for the global suggestion catalog.
var DefaultCatalog = []string{
	"Sushi", "Ramen", "Tempura", "Sashimi", "Onigiri",
	"Takoyaki", "Okonomiyaki", "Udon", "Soba", "Yakitori",
	"Tacos", "Burrito", "Quesadilla", "Enchiladas", "Nachos",
	"Pad Thai", "Green Curry", "Massaman Curry", "Tom Yum Soup", "Pho",
	"Banh Mi", "Spring Rolls", "Baozi", "Dim Sum", "Peking Duck",
	"Hot Pot", "Char Siu", "Yangzhou Fried Rice", "Samosa", "Biryani",
	"Butter Chicken", "Naan", "Palak Paneer", "Dosa", "Chole",
	"Masala Chai", "Falafel", "Hummus", "Shawarma", "Kebab",
	"Dolma", "Tabbouleh", "Shakshuka", "Couscous", "Tagine",
	"Jollof Rice", "Injera", "Doro Wat", "Bobotie", "Feijoada",
	"Ceviche", "Empanada", "Arepa", "Poutine", "Shepherd's Pie",
	"Fish and Chips", "Pierogi", "Goulash", "Wiener Schnitzel", "Pretzel",
	"Bratwurst", "Paella", "Tapas", "Pizza Margherita", "Lasagna",
	"Spaghetti Carbonara", "Risotto", "Gelato", "Tiramisu", "Cannoli",
	"Croissant", "Baguette", "Crepe", "Quiche Lorraine", "Ratatouille",
	"Bouillabaisse", "Coq au Vin", "Polenta", "Minestrone", "Caprese Salad",
	"Caesar Salad", "Gazpacho", "Kimchi", "Bibimbap", "Bulgogi",
	"Mapo Tofu", "Kung Pao Chicken", "Chow Mein", "Congee", "Mango Sticky Rice",
	"Mochi", "Nikujaga", "Shish Taouk", "Koshari", "Khachapuri",
	"Borscht", "Blini", "Churros", "Alfajores", "Baklava",
}
