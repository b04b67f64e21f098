package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Canned blockchain-node responses for the dapp's ping-pong contract demo. They are written out
// verbatim so the bytes never depend on map ordering or encoder settings.
var (
	timeToPongResponse = []byte(`{"status":"not_yet_pinged"}`)

	accountResponse = []byte(`{"address":"erd1rz6603qr57vumjpwvvk8l777uw945xxq432a7ae8pysemgmqrtcq0yvvr5",` +
		`"balance":"26198263171619999970","nonce":366,"shard":0}`)

	pingResponse = []byte(`{"nonce":366,"value":"1000000000000000000",` +
		`"receiver":"erd1qqqqqqqqqqqqqpgqm6ad6xrsjvxlcdcffqe8w58trpec09ug9l5qde96pq",` +
		`"sender":"erd1rz6603qr57vumjpwvvk8l777uw945xxq432a7ae8pysemgmqrtcq0yvvr5",` +
		`"gasPrice":1000000000,"gasLimit":6000000,"data":"cGluZw==","chainID":"D","version":1}`)

	pongResponse = []byte(`{"nonce":367,"value":"0",` +
		`"receiver":"erd1qqqqqqqqqqqqqpgqm6ad6xrsjvxlcdcffqe8w58trpec09ug9l5qde96pq",` +
		`"sender":"erd1rz6603qr57vumjpwvvk8l777uw945xxq432a7ae8pysemgmqrtcq0yvvr5",` +
		`"gasPrice":1000000000,"gasLimit":6000000,"data":"cG9uZw==","chainID":"D","version":1}`)
)

func fixedJSON(body []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", body)
	}
}

func registerNodeSimulator(r gin.IRoutes) {
	r.GET("/ping-pong/abi/time-to-pong", fixedJSON(timeToPongResponse))
	r.GET("/account", fixedJSON(accountResponse))
	r.POST("/ping-pong/abi/ping", fixedJSON(pingResponse))
	r.POST("/ping-pong/abi/pong", fixedJSON(pongResponse))
}
