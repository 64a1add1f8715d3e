package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CaseReference is one external case-law citation.
type CaseReference struct {
	CaseTitle    string `json:"caseTitle"`
	DocketNumber string `json:"docketNumber"`
	Snippet      string `json:"snippet"`
}

// HandleListCases returns sample external case-law references. A real
// deployment would back this with a case-law search provider.
func HandleListCases() gin.HandlerFunc {
	sampleCases := []CaseReference{
		{
			CaseTitle:    "Robinson v. De Niro",
			DocketNumber: "1:19-cv-09156 (S.D.N.Y., Jul 8, 2021)",
			Snippet:      "Discusses 'faithless servant doctrine' in detail...",
		},
		{
			CaseTitle:    "Doe v. ExampleCorp",
			DocketNumber: "2:21-cv-04234 (C.D.Cal., Jan 15, 2022)",
			Snippet:      "Addresses breach of fiduciary duty under California law...",
		},
	}

	return func(c *gin.Context) {
		c.JSON(http.StatusOK, sampleCases)
	}
}
