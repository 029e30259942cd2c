package flags

import "github.com/urfave/cli/v2"

const (
	StoreCategory   = "STORE"
	SigningCategory = "SIGNING"
	LoggingCategory = "LOGGING AND DEBUGGING"
	MiscCategory    = "MISC"
)

func init() {
	cli.HelpFlag.(*cli.BoolFlag).Category = MiscCategory
	cli.VersionFlag.(*cli.BoolFlag).Category = MiscCategory
}
