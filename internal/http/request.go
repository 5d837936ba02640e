package http

import (
	"github.com/gin-gonic/gin"

	"bakery/internal/core"
)

// transactionRequest is the JSON body of POST and PUT. Pointers tell a
// missing field apart from a zero value.
type transactionRequest struct {
	Date        *core.Date  `json:"date" binding:"required"`
	Description string      `json:"description" binding:"required"`
	Amount      *core.Money `json:"amount" binding:"required"`
	Type        core.TxType `json:"type" binding:"required,oneof=income expense"`
	Category    string      `json:"category" binding:"required"`
}

func (r transactionRequest) fields() core.TransactionFields {
	return core.TransactionFields{
		Date:        *r.Date,
		Description: r.Description,
		Amount:      *r.Amount,
		Type:        r.Type,
		Category:    r.Category,
	}
}

// bindFields decodes and checks the body. Structural problems come from the
// binding tags; Validate adds the semantic checks.
func bindFields(c *gin.Context) (core.TransactionFields, error) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return core.TransactionFields{}, err
	}
	f := req.fields()
	if err := f.Validate(); err != nil {
		return core.TransactionFields{}, err
	}
	return f, nil
}
