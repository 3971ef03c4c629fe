package entity

// InputKind classifies an inbound artifact.
type InputKind int

const (
	InputFilenameOnly InputKind = iota
	InputRasterImage
	InputPDFDocument
)

// QuoteRequest is one inbound pricing request. It lives for a single API
// call and is discarded once the result is assembled.
type QuoteRequest struct {
	Filename    string
	Data        []byte // nil on the filename-only degraded path
	ContentType string

	MaterialKey      string
	Quantity         int
	MachineTimeHours float64
}

// Dims carries the recognized dimensions in millimetres. Fields that do not
// apply to the recognized shape stay null in the payload.
type Dims struct {
	DMM *float64 `json:"D_mm"`
	LMM *float64 `json:"L_mm"`
	BMM *float64 `json:"B_mm"`
	HMM *float64 `json:"H_mm"`
}

// QuoteResult is the pipeline's final output. Every monetary and physical
// value is either a finite number or null, never NaN or Infinity.
type QuoteResult struct {
	ReceivedFile   string `json:"receivedFile"`
	Geometry       Kind   `json:"geometry"`
	GeometrySource Source `json:"geometrySource,omitempty"`
	Dims           Dims   `json:"dims"`

	VolumeCm3 *float64 `json:"volume_cm3"`
	WeightKg  *float64 `json:"weightKg"`

	Material      string   `json:"material"`
	PricePerKg    float64  `json:"pricePerKg"`
	MaterialPrice *float64 `json:"materialPrice"`
	Machining     float64  `json:"machining"`
	TotalPerPiece float64  `json:"totalPerPiece"`

	Quantity int     `json:"quantity"`
	TotalAll float64 `json:"totalAll"`

	// NeedsManual flags quotes a human has to finish: unrecognized geometry
	// or a weight that could not be derived.
	NeedsManual bool `json:"needsManual"`
	Cached      bool `json:"cached"`
}
