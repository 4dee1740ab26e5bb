package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

var currentBuildArgs BuildArgs

func Execute(args []string, bArgs BuildArgs) error {
	currentBuildArgs = bArgs
	app := cli.App{
		Name:                  "subgrab",
		HelpName:              "subgrab",
		Usage:                 "A supervisor for the download daemon and its bot.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "subgrab <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          usageErrorCallback,
		Commands: []cli.Command{
			{
				Name:                   "up",
				Aliases:                []string{"u"},
				Usage:                  "run the daemon and bot stack in the foreground",
				Action:                 up,
				OnUsageError:           usageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            UpDescription,
				UseShortOptionHandling: true,
				Flags:                  upFlags,
			},
			{
				Name:            "daemon",
				Usage:           "run the stack detached in the background",
				Action:          daemon,
				SkipFlagParsing: true,
			},
			{
				Name:               "status",
				Aliases:            []string{"s"},
				Usage:              "show launcher and daemon status",
				Action:             status,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        StatusDescription,
			},
			{
				Name:   "stop",
				Usage:  "stop a detached launcher",
				Action: stop,
			},
			{
				Name:               "attach",
				Aliases:            []string{"a"},
				Usage:              "follow active downloads with progress bars",
				Action:             attach,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        AttachDescription,
			},
			{
				Name:                   "history",
				Aliases:                []string{"l"},
				Usage:                  "display launcher session history",
				Action:                 history,
				OnUsageError:           usageErrorCallback,
				CustomHelpTemplate:     CMD_HELP_TEMPL,
				Description:            HistoryDescription,
				UseShortOptionHandling: true,
				Flags:                  historyFlags,
			},
			{
				Name:               "stats",
				Usage:              "show host resource usage",
				Action:             statsCmd,
				OnUsageError:       usageErrorCallback,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Description:        StatsDescription,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of subgrab",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             getVersion,
			},
		},
		Action:                 up,
		Flags:                  upFlags,
		UseShortOptionHandling: true,
		HideHelp:               true,
		HideVersion:            true,
	}
	versionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
