package enums

// AvailabilityReason classifies why a product cannot be reserved right now.
type AvailabilityReason string

const (
	AvailabilityReasonSoldOut     AvailabilityReason = "sold_out"
	AvailabilityReasonUnavailable AvailabilityReason = "unavailable"
)

// String implements fmt.Stringer.
func (r AvailabilityReason) String() string {
	return string(r)
}
