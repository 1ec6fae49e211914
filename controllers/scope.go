package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/danuartha/biliard-app/models"
	"github.com/danuartha/biliard-app/utils"
)

// ErrNoPermission dipakai endpoint yang di-gate role.
var ErrNoPermission = &CustomError{"You do not have permission"}

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

// getScope mengambil tenant scope yang diset auth middleware. Semua query
// controller/manager wajib lewat scope ini.
func getScope(c *gin.Context) models.Scope {
	if v, exists := c.Get("scope"); exists {
		if scope, ok := v.(models.Scope); ok {
			return scope
		}
	}
	return models.Scope{}
}

// paramID membaca path param numerik; merespons 400 sendiri kalau rusak.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}
