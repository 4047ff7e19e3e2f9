package conf

// Context carries the loaded settings from the root command into
// subcommands. Settings is populated by the root PersistentPreRunE, before
// any subcommand RunE executes.
type Context struct {
	Settings *Settings
}
