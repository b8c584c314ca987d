package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Fixed option lists the mobile clients render as quick-pick reasons.

// RejectOptions handles GET /api/options/reject.
func RejectOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"opt_1": "Obsceno",
		"opt_2": "Depressivo",
		"opt_3": "Ofensivo",
		"opt_4": "Mais",
		"opt_5": "Assédio",
		"opt_6": "Spam / Propaganda",
		"opt_7": "Off-topic",
		"opt_8": "Repetido",
	})
}

// MyDeleteOptions handles GET /api/options/my-delete, shown to the author
// of an approved spotted.
func MyDeleteOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"opt_1": "Digitei errado",
		"opt_2": "Crush errado",
		"opt_3": "Me arrependi",
		"opt_4": "Mais",
		"opt_5": "Prefiro não dizer",
		"opt_8": "Outro",
	})
}

// ForMeDeleteOptions handles GET /api/options/forme-delete, shown to the
// person a spotted is about.
func ForMeDeleteOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"opt_1": "Ofensivo",
		"opt_2": "Obsceno",
		"opt_3": "Inadequado",
		"opt_4": "Mais",
		"opt_5": "Sou Comprometidx",
		"opt_6": "Prefiro não dizer",
		"opt_8": "Outro",
	})
}
