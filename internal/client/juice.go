package client

// Juice figures shown next to a query. Queries are free on the real network;
// this is a length-proportional approximation for display only, not a protocol cost.
const (
	juiceBase    = 1000
	juicePerByte = 10
)

// EstimateJuice returns an approximate, display-only compute cost for source
func EstimateJuice(source string) int64 {
	return juiceBase + juicePerByte*int64(len(source))
}
