package api

import "github.com/gin-gonic/gin"

func userIDFromContext(c *gin.Context) (uint, bool) {
	value, ok := c.Get("userID")
	if !ok {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

func profileIDFromContext(c *gin.Context) (uint, bool) {
	value, ok := c.Get("profileID")
	if !ok {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
