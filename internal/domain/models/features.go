package models

// Feature is one named input to the classifier. Imputed marks values that
// were missing in the dataset and substituted with zero; the substitution is
// kept for compatibility with the trained model, the flag lets callers tell
// "missing" apart from a genuine zero.
type Feature struct {
	Name    string  `json:"name"`
	Value   float64 `json:"value"`
	Imputed bool    `json:"imputed,omitempty"`
}

// FeatureNames is the exact ordered input contract of the classifier.
var FeatureNames = []string{
	"open_ma3",
	"close_ma3",
	"volume_ma3",
	"high_ma3",
	"low_ma3",
	"open_shift",
	"close_shift",
	"vix_open_ma3",
	"vix_close_ma3",
	"vix_variation_ma3",
	"vix_mean_ma3",
}

// FeatureVector is the fixed ordered feature set sent for prediction.
type FeatureVector []Feature

// Values returns the raw numeric values in contract order.
func (v FeatureVector) Values() []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = f.Value
	}
	return out
}

// MissingNames returns the names of features whose value had to be imputed.
func (v FeatureVector) MissingNames() []string {
	var out []string
	for _, f := range v {
		if f.Imputed {
			out = append(out, f.Name)
		}
	}
	return out
}

// Prediction is the classifier output for one feature vector.
type Prediction struct {
	Date    string        `json:"date"`
	Class   int           `json:"predicted_class"`
	Vector  FeatureVector `json:"features,omitempty"`
}
