package whitelist

import "fjacquet/cultura-csv/internal/models"

// Regions are the 20 Italian regions as spelled in the ISTAT library exports.
var Regions = []string{
	"Piemonte",
	"Valle d'Aosta - Vallée d'Aoste",
	"Lombardia",
	"Trentino-Alto Adige",
	"Veneto",
	"Friuli-Venezia Giulia",
	"Liguria",
	"Emilia-Romagna",
	"Toscana",
	"Umbria",
	"Marche",
	"Lazio",
	"Abruzzo",
	"Molise",
	"Campania",
	"Puglia",
	"Basilicata",
	"Calabria",
	"Sicilia",
	"Sardegna",
}

// Geographical are the five statistical macro areas.
var Geographical = []string{
	"Nord-ovest",
	"Nord-est",
	"Centro",
	"Sud",
	"Isole",
}

// Population are the municipality size bands, smallest first.
var Population = []string{
	"Fino a 2.000 abitanti",
	"Da 2.001 a 5.000 abitanti",
	"Da 5.001 a 10.000 abitanti",
	"Da 10.001 a 30.000 abitanti",
	"Da 30.001 a 50.000 abitanti",
	"Più di 50.000 abitanti",
}

// Classification are the inner-areas and urbanisation tiers.
var Classification = []string{
	"Città metropolitane",
	"Comune Polo",
	"Polo intercomunale",
	"Comune cintura",
	"Comune intermedio",
	"Comune periferico",
	"Comune ultra-periferico",
	"Città o zone densamente popolate",
	"Piccole città e sobborghi a densità intermedia di popolazione",
	"Zone rurali o scarsamente popolate",
}

// DefaultLists returns fresh copies of the four built-in whitelists.
func DefaultLists() map[models.GroupName][]string {
	return map[models.GroupName][]string{
		models.GroupRegions:        append([]string(nil), Regions...),
		models.GroupGeographical:   append([]string(nil), Geographical...),
		models.GroupPopulation:     append([]string(nil), Population...),
		models.GroupClassification: append([]string(nil), Classification...),
	}
}
