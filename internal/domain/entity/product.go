package entity

// Product vista mínima del catálogo externo: este servicio solo consulta si el código existe.
type Product struct {
	Code     string
	Name     string
	IsActive bool
}
