package geometry

const (
	// ViewBox is the coordinate system all path data is expressed in.
	ViewBox = "0 0 1000 1000"

	// DefaultPrimaryColor is the first gradient stop.
	DefaultPrimaryColor = "#06c9a1"

	// DefaultSecondaryColor is the second gradient stop.
	DefaultSecondaryColor = "#007afc"
)

var brainPaths = []Definition{
	{ID: "path-1", D: "M500,700 C500,700 500,750 500,800 C500,850 450,900 400,900 C350,900 300,850 300,800"},
	{ID: "path-2", D: "M300,800 C250,750 200,700 200,600 C200,500 250,450 300,400"},
	{ID: "path-3", D: "M300,400 C350,350 400,300 500,300"},
	{ID: "path-4", D: "M500,300 C600,300 650,350 700,400"},
	{ID: "path-5", D: "M700,400 C750,450 800,500 800,600 C800,700 750,750 700,800"},
	{ID: "path-6", D: "M700,800 C650,850 600,900 550,900 C500,900 500,850 500,800"},
	{ID: "path-7", D: "M300,600 C250,550 200,500 150,500 C100,500 50,550 50,600 C50,650 100,700 150,700 C200,700 250,650 300,600"},
	{ID: "path-8", D: "M700,600 C750,650 800,700 850,700 C900,700 950,650 950,600 C950,550 900,500 850,500 C800,500 750,550 700,600"},
	{ID: "path-9", D: "M400,600 C350,550 300,500 250,500 C200,500 150,550 150,600 C150,650 200,700 250,700 C300,700 350,650 400,600"},
	{ID: "path-10", D: "M600,600 C650,550 700,500 750,500 C800,500 850,550 850,600 C850,650 800,700 750,700 C700,700 650,650 600,600"},
}

var defaultReveal = RevealTable{
	0:   {},
	25:  {"path-1"},
	50:  {"path-1", "path-6", "path-9", "path-10"},
	75:  {"path-1", "path-6", "path-9", "path-10", "path-5", "path-3", "path-2"},
	100: {"path-1", "path-6", "path-9", "path-10", "path-5", "path-3", "path-2", "path-4", "path-7", "path-8"},
}

var defaultTraversal = []PathID{
	"path-4", "path-5", "path-1", "path-9", "path-10",
	"path-2", "path-3", "path-6", "path-7", "path-8",
}
