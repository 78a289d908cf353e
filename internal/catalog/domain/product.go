package domain

type Product struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
