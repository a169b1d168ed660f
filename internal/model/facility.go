package model

// FacilityType categorizes the care setting a bill came from. The setting
// determines which fee-schedule rate variant applies during pricing.
type FacilityType string

const (
	FacilityHospital        FacilityType = "hospital"
	FacilityPhysicianOffice FacilityType = "physician_office"
	FacilityUrgentCare      FacilityType = "urgent_care"
	FacilityLaboratory      FacilityType = "laboratory"
	FacilityImagingCenter   FacilityType = "imaging_center"
	FacilityAmbulatory      FacilityType = "ambulatory"
	FacilityEmergency       FacilityType = "emergency"
	FacilityUnknown         FacilityType = "unknown"
)

// AllFacilityTypes lists the supported facility types in canonical order.
var AllFacilityTypes = []FacilityType{
	FacilityHospital,
	FacilityPhysicianOffice,
	FacilityUrgentCare,
	FacilityLaboratory,
	FacilityImagingCenter,
	FacilityAmbulatory,
	FacilityEmergency,
	FacilityUnknown,
}

// UsesFacilityRate reports whether bills from this setting are priced against
// the facility rate (with non-facility as fallback) rather than the reverse.
func (f FacilityType) UsesFacilityRate() bool {
	switch f {
	case FacilityHospital, FacilityEmergency, FacilityAmbulatory:
		return true
	}
	return false
}

// ParseFacilityType returns the FacilityType for the given name, or ok=false.
func ParseFacilityType(name string) (FacilityType, bool) {
	for _, f := range AllFacilityTypes {
		if string(f) == name {
			return f, true
		}
	}
	return FacilityUnknown, false
}
