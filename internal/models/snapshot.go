package models

// Sequences guarda el último id emitido por entidad
type Sequences struct {
	User    int64 `json:"user" bson:"user"`
	Product int64 `json:"product" bson:"product"`
	Order   int64 `json:"order" bson:"order"`
}

// Snapshot es el estado persistible del marketplace.
// El carrito y la sesión nunca se persisten.
type Snapshot struct {
	Users     []User    `json:"users"`
	Products  []Product `json:"products"`
	Orders    []Order   `json:"orders"`
	Sequences Sequences `json:"sequences"`
}

// Empty indica si el snapshot no tiene datos
func (s *Snapshot) Empty() bool {
	return s == nil || (len(s.Users) == 0 && len(s.Products) == 0 && len(s.Orders) == 0)
}
