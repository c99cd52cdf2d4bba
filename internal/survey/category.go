package survey

import (
	"errors"
	"fmt"
)

// ErrUnsupportedCategory rejects a download request naming a data category
// outside the closed enumeration.
var ErrUnsupportedCategory = errors.New("survey: unsupported data category")

// DataCategory enumerates the hydro download data types. The set is closed;
// unknown request values fail with ErrUnsupportedCategory instead of
// silently yielding nothing.
type DataCategory string

const (
	CategoryWater                 DataCategory = "water"
	CategoryWaterNutrientsAndChem DataCategory = "water nutrients and chemistry"
	CategoryWaterChemistry        DataCategory = "water chemistry"
	CategoryWaterPollution        DataCategory = "water pollution"
	CategoryWaterNutrients        DataCategory = "water nutrients"
	CategoryWaterCurrents         DataCategory = "water currents"
	CategorySediment              DataCategory = "sediment"
	CategorySedimentChemistry     DataCategory = "sediment chemistry"
	CategorySedimentPollution     DataCategory = "sediment pollution"
	CategoryWeather               DataCategory = "weather"
	CategoryCurrents              DataCategory = "currents"
)

var dataCategories = map[DataCategory]struct{}{
	CategoryWater:                 {},
	CategoryWaterNutrientsAndChem: {},
	CategoryWaterChemistry:        {},
	CategoryWaterPollution:        {},
	CategoryWaterNutrients:        {},
	CategoryWaterCurrents:         {},
	CategorySediment:              {},
	CategorySedimentChemistry:     {},
	CategorySedimentPollution:     {},
	CategoryWeather:               {},
	CategoryCurrents:              {},
}

// ParseDataCategory validates a request value against the closed set.
func ParseDataCategory(value string) (DataCategory, error) {
	c := DataCategory(value)
	if _, ok := dataCategories[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedCategory, value)
	}
	return c, nil
}

// SurveyTypeName enumerates the survey families served by the download
// endpoints. Values appear in URL paths and in the download audit.
type SurveyTypeName string

const (
	TypeHydro        SurveyTypeName = "hydro"
	TypeCurrents     SurveyTypeName = "currents"
	TypeWeather      SurveyTypeName = "weather"
	TypeWaves        SurveyTypeName = "waves"
	TypeUTR          SurveyTypeName = "utr"
	TypeEchoSounding SurveyTypeName = "echo-sounding"
	TypeVos          SurveyTypeName = "vos"
)
