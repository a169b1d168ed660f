package model

// CheckType names one of the supported audit checks.
type CheckType struct {
	Name string // e.g. "price"
	Flag FlagType
}

// AllCheckTypes lists the supported checks in canonical execution order.
// Flag concatenation in the audit engine follows this order.
var AllCheckTypes = []CheckType{
	{Name: "price", Flag: FlagPriceOutlier},
	{Name: "duplicate", Flag: FlagDuplicateCharge},
	{Name: "unbundling", Flag: FlagUnbundling},
	{Name: "upcoding", Flag: FlagUpcoding},
	{Name: "balance_billing", Flag: FlagBalanceBilling},
}

// CheckTypeNames returns just the names for all check types.
func CheckTypeNames() []string {
	names := make([]string, len(AllCheckTypes))
	for i, ct := range AllCheckTypes {
		names[i] = ct.Name
	}
	return names
}

// CheckTypeByName returns the CheckType for the given name, or ok=false.
func CheckTypeByName(name string) (CheckType, bool) {
	for _, ct := range AllCheckTypes {
		if ct.Name == name {
			return ct, true
		}
	}
	return CheckType{}, false
}
