package calc

// ProductType classifies the seafood in a batch.
type ProductType string

const (
	ProductFish        ProductType = "fish"
	ProductShellfish   ProductType = "shellfish"
	ProductMollusks    ProductType = "mollusks"
	ProductCrustaceans ProductType = "crustaceans"
	ProductCephalopods ProductType = "cephalopods"
	ProductProcessed   ProductType = "processed"
	ProductOther       ProductType = "other"
)

// ProductTypes lists every known product type in display order.
func ProductTypes() []ProductType {
	return []ProductType{
		ProductFish,
		ProductShellfish,
		ProductMollusks,
		ProductCrustaceans,
		ProductCephalopods,
		ProductProcessed,
		ProductOther,
	}
}

// Valid reports whether t is one of the known product types.
func (t ProductType) Valid() bool {
	for _, known := range ProductTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Worker is one labor line: an hourly rate and the hours spent on the batch.
type Worker struct {
	HourlyRate float64 `json:"hourlyRate"`
	Hours      float64 `json:"hours"`
}

// ProcessingPhase is a named step that trims and/or adds weight to the running net weight.
type ProcessingPhase struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	WastePercentage float64 `json:"wastePercentage"`
	AddedWeight     float64 `json:"addedWeight"`
}

// FormData holds every input of a batch calculation. Zero means "not supplied".
type FormData struct {
	ProductName string      `json:"productName"`
	ProductType ProductType `json:"productType"`

	PurchasePrice  float64 `json:"purchasePrice"`
	Quantity       float64 `json:"quantity"`
	Waste          float64 `json:"waste"`
	GlazingPercent float64 `json:"glazingPercent"`

	Workers []Worker `json:"workers"`

	BoxCost float64 `json:"boxCost"`
	BagCost float64 `json:"bagCost"`

	Distance     float64 `json:"distance"`
	FuelCost     float64 `json:"fuelCost"`
	Tolls        float64 `json:"tolls"`
	ParkingCost  float64 `json:"parkingCost"`
	DriverSalary float64 `json:"driverSalary"`

	ElectricityCost   float64 `json:"electricityCost"`
	EquipmentCost     float64 `json:"equipmentCost"`
	InsuranceCost     float64 `json:"insuranceCost"`
	RentCost          float64 `json:"rentCost"`
	CommunicationCost float64 `json:"communicationCost"`
	OtherCosts        float64 `json:"otherCosts"`

	ProfitMargin       float64 `json:"profitMargin"`
	TargetSellingPrice float64 `json:"targetSellingPrice"`
	MinimumMargin      float64 `json:"minimumMargin"`
	Competitor1        float64 `json:"competitor1"`
	Competitor2        float64 `json:"competitor2"`

	VATPercent float64 `json:"vatPercent"`

	BatchNumber        string            `json:"batchNumber"`
	SupplierName       string            `json:"supplierName"`
	ProcessingPhases   []ProcessingPhase `json:"processingPhases"`
	StorageTemperature string            `json:"storageTemperature"`
	ShelfLife          string            `json:"shelfLife"`
	SeasonalMultiplier float64           `json:"seasonalMultiplier"`
	Certifications     []string          `json:"certifications"`
}

// Cost categories, in breakdown order.
const (
	CategoryPurchase   = "purchase"
	CategoryLabor      = "labor"
	CategoryPackaging  = "packaging"
	CategoryTransport  = "transport"
	CategoryAdditional = "additional"
)

// CostItem is one row of the cost breakdown.
type CostItem struct {
	Category   string  `json:"category"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// MarketPosition describes the selling price relative to competitors.
type MarketPosition string

const (
	PositionCompetitive MarketPosition = "competitive"
	PositionPremium     MarketPosition = "premium"
	PositionBudget      MarketPosition = "budget"
)

// CompetitorAnalysis compares the selling price with the competitor prices that were supplied.
// A nil diff means the matching competitor price was not supplied.
type CompetitorAnalysis struct {
	OurPrice        float64        `json:"ourPrice"`
	Competitor1Diff *float64       `json:"competitor1Diff,omitempty"`
	Competitor2Diff *float64       `json:"competitor2Diff,omitempty"`
	MarketPosition  MarketPosition `json:"marketPosition"`
}

// ProfitAnalysis groups break-even and margin figures.
type ProfitAnalysis struct {
	BreakEvenPrice       float64 `json:"breakEvenPrice"`
	MarginAtCurrentPrice float64 `json:"marginAtCurrentPrice"`
	RecommendedMargin    float64 `json:"recommendedMargin"`
	TotalRevenue         float64 `json:"totalRevenue"`
	TotalProfit          float64 `json:"totalProfit"`
}

// Results is the full output of Calculate. It is derived data and never persisted by this package.
type Results struct {
	NetWeight float64 `json:"netWeight"`

	PurchaseCost    float64 `json:"purchaseCost"`
	LaborCost       float64 `json:"laborCost"`
	PackagingCost   float64 `json:"packagingCost"`
	TransportCost   float64 `json:"transportCost"`
	AdditionalCosts float64 `json:"additionalCosts"`

	TotalCost        float64 `json:"totalCost"`
	TotalCostWithVAT float64 `json:"totalCostWithVat"`
	VATAmount        float64 `json:"vatAmount"`

	CostPerKg               float64 `json:"costPerKg"`
	SellingPrice            float64 `json:"sellingPrice"`
	RecommendedSellingPrice float64 `json:"recommendedSellingPrice"`
	ProfitPerKg             float64 `json:"profitPerKg"`
	ProfitMargin            float64 `json:"profitMargin"`

	CostBreakdown      []CostItem         `json:"costBreakdown"`
	CompetitorAnalysis CompetitorAnalysis `json:"competitorAnalysis"`
	ProfitAnalysis     ProfitAnalysis     `json:"profitAnalysis"`
}
