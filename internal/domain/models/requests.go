package models

// DatasetRequest filters the dataset listing endpoint.
type DatasetRequest struct {
	From  string `query:"from"`
	To    string `query:"to"`
	Limit int    `query:"limit" default:"1000" validate:"gte=0,lte=10000"`
}

// PredictRequest controls the prediction endpoint.
type PredictRequest struct {
	// IncludeVector echoes the assembled feature vector (with imputation
	// flags) back in the response.
	IncludeVector bool `json:"include_vector"`
}
