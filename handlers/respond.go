package handlers

import (
	"net/http"

	"voiceoflaw-backend/entitlement"

	"github.com/gin-gonic/gin"
)

// respondError writes the uniform error envelope
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondQuotaExceeded writes the structured denial the client renders as
// an upgrade prompt
func respondQuotaExceeded(c *gin.Context, decision entitlement.Decision) {
	c.JSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "DAILY_LIMIT_REACHED",
			"message": "Daily limit reached. Upgrade to continue.",
			"details": gin.H{
				"resource":    decision.Resource,
				"daily_limit": decision.DailyLimit,
				"used_today":  decision.UsedToday,
			},
		},
	})
}

// respondSubscriptionRequired writes the paywall error
func respondSubscriptionRequired(c *gin.Context) {
	respondError(c, http.StatusForbidden, "SUBSCRIPTION_REQUIRED",
		"Your trial has ended. Subscribe to continue using this feature.")
}
