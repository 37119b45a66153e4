package linkage

import (
	"github.com/gilchrisn/linkage-graph-service/pkg/models"
)

// SampleRequest returns a small demonstration data set: four clients where
// three share a cookie hash and a password hash.
func SampleRequest() *models.AnalysisRequest {
	return &models.AnalysisRequest{
		Fields: []models.FieldSpec{
			{FieldID: "client_id", DisplayName: "Client IDs"},
			{FieldID: "cookie_hash", DisplayName: "Cookie Hashes"},
			{FieldID: "password_hash", DisplayName: "Password Hashes"},
		},
		Text: map[string]string{
			"client_id":     "1234\n2234\n3334\n4444",
			"cookie_hash":   "ab77777\ncd29343\nab77777\nab77777",
			"password_hash": "hh11111\njj93991\njj93991\njj93991",
		},
		Visualization: models.VisualizationConfig{Layout: models.LayoutSpring},
	}
}
