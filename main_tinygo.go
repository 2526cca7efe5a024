//go:build tinygo

package main

import (
	"context"

	"rgbtouch/app"
	"rgbtouch/hal"
	"rgbtouch/hwconfig"
)

func main() {
	board := hwconfig.Default()
	h, err := hal.New(board.HAL())
	if err != nil {
		println("hal:", err.Error())
		select {}
	}
	if err := app.Run(context.Background(), h, app.Config{Board: board}); err != nil {
		h.Logger().WriteLineString("rgbtouch: " + err.Error())
	}
	select {}
}
