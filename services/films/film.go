package films

// Film is a single row of the snapshot, Title is its natural key.
//
// json keys follow the names of the source table columns.
type Film struct {
	Title          string  `json:"Title"`
	Year           string  `json:"Year"`
	WorldwideGross float64 `json:"Worldwide gross"`
}
