package travel

import "strings"

type Region string

const (
	RegionEurope       Region = "europe"
	RegionAsia         Region = "asia"
	RegionAfrica       Region = "africa"
	RegionNorthAmerica Region = "north-america"
	RegionSouthAmerica Region = "south-america"
	RegionOceania      Region = "oceania"
	RegionAntarctica   Region = "antarctica"
)

type Trinket struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Country struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Region  Region  `json:"region"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Trinket Trinket `json:"trinket"`
}

func c(code, name string, region Region, lat, lng float64, trinket string) Country {
	return Country{
		Code:    code,
		Name:    name,
		Region:  region,
		Lat:     lat,
		Lng:     lng,
		Trinket: Trinket{ID: "trinket-" + strings.ToLower(code), Name: trinket},
	}
}

var countries = []Country{
	c("DE", "Germany", RegionEurope, 51.1657, 10.4515, "Beer Stein"),
	c("FR", "France", RegionEurope, 46.2276, 2.2137, "Eiffel Tower"),
	c("IT", "Italy", RegionEurope, 41.8719, 12.5674, "Colosseum Model"),
	c("ES", "Spain", RegionEurope, 40.4637, -3.7492, "Flamenco Fan"),
	c("GB", "United Kingdom", RegionEurope, 55.3781, -3.4360, "Big Ben Clock"),
	c("NL", "Netherlands", RegionEurope, 52.1326, 5.2913, "Wooden Clog"),
	c("CH", "Switzerland", RegionEurope, 46.8182, 8.2275, "Swiss Watch"),
	c("AT", "Austria", RegionEurope, 47.5162, 14.5501, "Music Box"),
	c("NO", "Norway", RegionEurope, 60.4720, 8.4689, "Viking Helmet"),
	c("SE", "Sweden", RegionEurope, 60.1282, 18.6435, "Dala Horse"),
	c("PT", "Portugal", RegionEurope, 39.3999, -8.2245, "Azulejo Tile"),
	c("GR", "Greece", RegionEurope, 39.0742, 21.8243, "Parthenon Pillar"),
	c("PL", "Poland", RegionEurope, 51.9194, 19.1451, "Amber Jewelry"),
	c("CZ", "Czech Republic", RegionEurope, 49.8175, 15.4730, "Crystal Glass"),

	c("JP", "Japan", RegionAsia, 36.2048, 138.2529, "Sushi Plate"),
	c("CN", "China", RegionAsia, 35.8617, 104.1954, "Dragon Figurine"),
	c("KR", "South Korea", RegionAsia, 35.9078, 127.7669, "K-pop Album"),
	c("TH", "Thailand", RegionAsia, 15.8700, 100.9925, "Golden Buddha"),
	c("VN", "Vietnam", RegionAsia, 14.0583, 108.2772, "Conical Hat"),
	c("ID", "Indonesia", RegionAsia, -0.7893, 113.9213, "Batik Fabric"),
	c("SG", "Singapore", RegionAsia, 1.3521, 103.8198, "Merlion"),
	c("IN", "India", RegionAsia, 20.5937, 78.9629, "Taj Mahal Model"),
	c("AE", "UAE", RegionAsia, 23.4241, 53.8478, "Burj Khalifa"),
	c("TR", "Turkey", RegionAsia, 38.9637, 35.2433, "Evil Eye Charm"),

	c("US", "United States", RegionNorthAmerica, 37.0902, -95.7129, "Statue of Liberty"),
	c("CA", "Canada", RegionNorthAmerica, 56.1304, -106.3468, "Maple Leaf"),
	c("MX", "Mexico", RegionNorthAmerica, 23.6345, -102.5528, "Sombrero"),
	c("BR", "Brazil", RegionSouthAmerica, -14.2350, -51.9253, "Christ the Redeemer"),
	c("AR", "Argentina", RegionSouthAmerica, -38.4161, -63.6167, "Tango Shoes"),
	c("PE", "Peru", RegionSouthAmerica, -9.1900, -75.0152, "Machu Picchu Stone"),

	c("EG", "Egypt", RegionAfrica, 26.8206, 30.8025, "Pyramid Figurine"),
	c("MA", "Morocco", RegionAfrica, 31.7917, -7.0926, "Tagine Pot"),
	c("ZA", "South Africa", RegionAfrica, -30.5595, 22.9375, "Safari Binoculars"),
	c("KE", "Kenya", RegionAfrica, -0.0236, 37.9062, "Masai Beads"),

	c("AU", "Australia", RegionOceania, -25.2744, 133.7751, "Kangaroo Plush"),
	c("NZ", "New Zealand", RegionOceania, -40.9006, 174.8860, "Kiwi Bird"),
	c("FJ", "Fiji", RegionOceania, -17.7134, 178.0650, "Flower Lei"),

	c("AQ", "Antarctica", RegionAntarctica, -75.250973, -0.071389, "Penguin"),
}

// Countries returns the map catalog.
func Countries() []Country {
	out := make([]Country, len(countries))
	copy(out, countries)
	return out
}

func ByCode(code string) (Country, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range countries {
		if c.Code == code {
			return c, true
		}
	}
	return Country{}, false
}

// Trinkets lists the trinkets earned by the visited codes, skipping codes outside the catalog.
func Trinkets(visited []string) []Trinket {
	out := make([]Trinket, 0, len(visited))
	for _, code := range visited {
		if c, ok := ByCode(code); ok {
			out = append(out, c.Trinket)
		}
	}
	return out
}
