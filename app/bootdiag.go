//go:build !(tinygo && bootdebug)

package app

import "rgbtouch/hal"

func bootStep(hal.HAL, string) {}
