package db

type Film struct {
	Title          string
	Year           string
	WorldwideGross float64
}
