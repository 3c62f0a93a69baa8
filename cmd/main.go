package main

import (
	"github.com/corray333/backend-labs/orderitems/internal/app"
	"github.com/corray333/backend-labs/orderitems/internal/config"
)

//	@title			Order Items API
//	@version		1.0
//	@description	Adds products to orders and reads order contents.
//	@BasePath		/

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
