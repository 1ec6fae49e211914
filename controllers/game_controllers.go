package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/danuartha/biliard-app/models"
	"github.com/danuartha/biliard-app/utils"
)

type GameController struct {
	DB *gorm.DB
}

func NewGameController(db *gorm.DB) *GameController {
	return &GameController{DB: db}
}

// GetAllGames
func (gc *GameController) GetAllGames(c *gin.Context) {
	var games []models.Game
	if err := getScope(c).Apply(gc.DB).Find(&games).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of games", games)
}

// CreateGame
func (gc *GameController) CreateGame(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	game := models.Game{
		StationID:   getScope(c).StationID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := gc.DB.Create(&game).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Game created", game)
}

// UpdateGame
func (gc *GameController) UpdateGame(c *gin.Context) {
	gameID := c.Param("game_id")

	var body struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var game models.Game
	if err := getScope(c).Apply(gc.DB).First(&game, gameID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if body.Name != nil {
		game.Name = *body.Name
	}
	if body.Description != nil {
		game.Description = *body.Description
	}

	if err := gc.DB.Save(&game).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Game updated", game)
}

// DeleteGame -> tolak kalau masih ada meja yang memakai game ini
func (gc *GameController) DeleteGame(c *gin.Context) {
	gameID := c.Param("game_id")
	scope := getScope(c)

	var game models.Game
	if err := scope.Apply(gc.DB).First(&game, gameID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var tables int64
	if err := scope.Apply(gc.DB.Model(&models.Table{})).
		Where("game_id = ?", game.ID).Count(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if tables > 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("game still has %d tables", tables))
		return
	}

	if err := gc.DB.Delete(&game).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Game deleted", gin.H{"id": game.ID})
}
