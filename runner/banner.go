package runner

import (
	"github.com/projectdiscovery/gologger"
)

const banner = `
    __                 __   __
   / /_  ________  __ / /__/ /_
  / __ \/ ___/ _ \/ //_/ _  __/
 / / / / /  /  __/ ,< / /_/ /_
/_/ /_/_/   \___/_/|_|\__/\__/
`

// version is the current version of hrekt
const version = `v0.2.0`

// showBanner is used to show the banner to the user
func showBanner() {
	gologger.Print().Msgf("%s\n", banner)
	gologger.Print().Msgf("\t\tfast http prober\n\n")
}
