package catalog

// BuyUnit es la unidad en la que se compra a un proveedor
type BuyUnit string

const (
	BuyKG     BuyUnit = "KG"
	BuyCaja   BuyUnit = "CAJA"
	BuyFardo  BuyUnit = "FARDO"
	BuyBolsa  BuyUnit = "BOLSA"
	BuyAtado  BuyUnit = "ATADO"
	BuyUnidad BuyUnit = "UNIDAD"
)

// SaleUnit es la unidad en la que se vende al público
type SaleUnit string

const (
	SaleKG      SaleUnit = "KG"
	SaleAtado   SaleUnit = "ATADO"
	SaleUnidad  SaleUnit = "UNIDAD"
	SaleBandeja SaleUnit = "BANDEJA"
	SaleBolsa   SaleUnit = "BOLSA"
)

// Category agrupa productos en el tablero
type Category string

const (
	CategoryVerdura   Category = "VERDURA"
	CategoryFruta     Category = "FRUTA"
	CategoryHortaliza Category = "HORTALIZA"
	CategoryOtros     Category = "OTROS"
)

// CategoryOrder es el orden de presentación del tablero
var CategoryOrder = []Category{CategoryVerdura, CategoryFruta, CategoryHortaliza, CategoryOtros}

func (u BuyUnit) Valid() bool {
	switch u {
	case BuyKG, BuyCaja, BuyFardo, BuyBolsa, BuyAtado, BuyUnidad:
		return true
	}
	return false
}

func (u SaleUnit) Valid() bool {
	switch u {
	case SaleKG, SaleAtado, SaleUnidad, SaleBandeja, SaleBolsa:
		return true
	}
	return false
}

func (c Category) Valid() bool {
	switch c {
	case CategoryVerdura, CategoryFruta, CategoryHortaliza, CategoryOtros:
		return true
	}
	return false
}

// Rank devuelve la posición de la categoría en CategoryOrder
func (c Category) Rank() int {
	for i, v := range CategoryOrder {
		if v == c {
			return i
		}
	}
	return len(CategoryOrder)
}

// SameAs indica si la unidad de compra coincide con la de venta
func (u BuyUnit) SameAs(s SaleUnit) bool {
	return string(u) == string(s)
}
