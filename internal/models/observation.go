package models

// FieldCount is the length of the feature vector the model was trained on.
const FieldCount = 9

// Field describes one slider on the input form.
type Field struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Unit    string  `json:"unit"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
	Step    float64 `json:"step"`
}

// Contains reports whether v lies in the closed interval [Min, Max].
func (f Field) Contains(v float64) bool {
	return v >= f.Min && v <= f.Max
}

// Fields lists the model inputs in feature-vector order. Do not reorder.
var Fields = [FieldCount]Field{
	{Key: "distance_to_solar_noon", Label: "Distance to Solar Noon", Unit: "radians", Min: 0, Max: 3.14, Default: 1.57, Step: 0.01},
	{Key: "temperature", Label: "Temperature", Unit: "°C", Min: -30, Max: 100, Default: 25, Step: 0.1},
	{Key: "wind_direction", Label: "Wind Direction", Unit: "degrees", Min: 0, Max: 360, Default: 180, Step: 1},
	{Key: "wind_speed", Label: "Wind Speed", Unit: "m/s", Min: 0, Max: 30, Default: 3, Step: 0.1},
	{Key: "sky_cover", Label: "Sky Cover", Unit: "0-4", Min: 0, Max: 4, Default: 2, Step: 1},
	{Key: "visibility", Label: "Visibility", Unit: "km", Min: 0, Max: 50, Default: 10, Step: 1},
	{Key: "humidity", Label: "Humidity", Unit: "%", Min: 0, Max: 100, Default: 60, Step: 1},
	{Key: "average_wind_speed", Label: "Avg Wind Speed", Unit: "m/s", Min: 0, Max: 100, Default: 10, Step: 0.1},
	{Key: "average_pressure", Label: "Avg Pressure", Unit: "inHg", Min: 18, Max: 43, Default: 29.92, Step: 0.01},
}

// FieldIndex returns the position of key in Fields, or -1.
func FieldIndex(key string) int {
	for i, f := range Fields {
		if f.Key == key {
			return i
		}
	}
	return -1
}

// Observation is one set of weather conditions, in Fields order.
type Observation [FieldCount]float64

// DefaultObservation returns every field at its slider default.
func DefaultObservation() Observation {
	var o Observation
	for i, f := range Fields {
		o[i] = f.Default
	}
	return o
}

// Vector returns the observation as the feature vector passed to the model.
func (o Observation) Vector() []float64 {
	v := make([]float64, FieldCount)
	copy(v, o[:])
	return v
}

// Map returns the observation keyed by field key.
func (o Observation) Map() map[string]float64 {
	m := make(map[string]float64, FieldCount)
	for i, f := range Fields {
		m[f.Key] = o[i]
	}
	return m
}
