package infra

import (
	"fmt"
)

// ANSI Color Codes
const (
	ColorReset  = "\033[0m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// PrintBanner displays the startup banner with the run parameters that
// matter for reproducing it.
func PrintBanner(cfg *Config, seed int64) {
	color := ColorCyan

	fmt.Println()
	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s#              📈 Agent-Based Market Simulator            #%s\n", color, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s#   VERSION: %-36s #%s\n", color, cfg.App.Version, ColorReset)
	fmt.Printf("%s#   DAYS:    %-36d #%s\n", color, cfg.Sim.Days, ColorReset)
	fmt.Printf("%s#   SEED:    %-36d #%s\n", color, seed, ColorReset)
	fmt.Printf("%s#   START:   %-36s #%s\n", color, cfg.Sim.StartPrice, ColorReset)
	fmt.Printf("%s#                                                         #%s\n", color, ColorReset)
	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Println()
}
