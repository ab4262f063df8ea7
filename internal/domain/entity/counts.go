package entity

// Counts agrupa las cantidades de aves por sexo en una ubicación (hembras, machos, mixtos).
// Todas las cantidades son enteros; el conteo visible de un lote es la suma de las tres.
type Counts struct {
	Female int `json:"female"`
	Male   int `json:"male"`
	Mixed  int `json:"mixed"`
}

// Add devuelve la suma componente a componente.
func (c Counts) Add(o Counts) Counts {
	return Counts{Female: c.Female + o.Female, Male: c.Male + o.Male, Mixed: c.Mixed + o.Mixed}
}

// Sub devuelve la resta componente a componente (puede producir negativos; validar con HasNegative).
func (c Counts) Sub(o Counts) Counts {
	return Counts{Female: c.Female - o.Female, Male: c.Male - o.Male, Mixed: c.Mixed - o.Mixed}
}

// Total devuelve el total de aves (hembras + machos + mixtos).
func (c Counts) Total() int {
	return c.Female + c.Male + c.Mixed
}

// IsZero indica si las tres cantidades son cero.
func (c Counts) IsZero() bool {
	return c.Female == 0 && c.Male == 0 && c.Mixed == 0
}

// HasNegative indica si alguna cantidad es negativa.
func (c Counts) HasNegative() bool {
	return c.Female < 0 || c.Male < 0 || c.Mixed < 0
}

// Covers indica si c alcanza para descontar o por cada componente (c >= o).
func (c Counts) Covers(o Counts) bool {
	return c.Female >= o.Female && c.Male >= o.Male && c.Mixed >= o.Mixed
}
