package cost

// Default unit prices for the materials estimate, in DefaultCurrency.
const (
	DefaultCurrency = "EUR"

	ValveCostEach     = 35.0 // solenoid valve with fittings
	SprinklerCostEach = 12.0 // pop-up spray head
	TrenchCostPerM3   = 45.0 // manual trenching and backfill

	// Trench cross-section for buried lateral lines.
	TrenchDepthM = 0.30
	TrenchWidthM = 0.15
)

// DefaultPipeCostPerM is the price per meter for each nominal PE class.
var DefaultPipeCostPerM = map[string]float64{
	"PE16": 0.9,
	"PE20": 1.3,
	"PE25": 1.9,
	"PE32": 2.8,
	"PE40": 4.1,
	"PE50": 6.0,
}
