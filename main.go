package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogorichielab/ppcollection/config"
	"github.com/gogorichielab/ppcollection/database"
	"github.com/gogorichielab/ppcollection/logger"
	"github.com/gogorichielab/ppcollection/util/crypto"
	"github.com/gogorichielab/ppcollection/web"
	"github.com/gogorichielab/ppcollection/web/service"

	"github.com/joho/godotenv"
	"github.com/op/go-logging"
	"github.com/spf13/cobra"
)

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG)
	case config.Info:
		logger.InitLogger(logging.INFO)
	case config.Warn:
		logger.InitLogger(logging.WARNING)
	case config.Error:
		logger.InitLogger(logging.ERROR)
	default:
		log.Fatal("unknown log level:", config.GetLogLevel())
	}

	if err := database.InitDB(config.GetDBPath()); err != nil {
		log.Fatal(err)
	}

	server := web.NewServer()
	if err := server.Start(); err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer()
			if err := server.Start(); err != nil {
				log.Println(err)
				return
			}
		default:
			_ = server.Stop()
			_ = database.CloseDB()
			logger.CloseLogger()
			return
		}
	}
}

func resetSetting() {
	if err := database.InitDB(config.GetDBPath()); err != nil {
		fmt.Println(err)
		return
	}

	settingService := service.SettingService{}
	if err := settingService.ResetSettings(); err != nil {
		fmt.Println("reset setting failed:", err)
	} else {
		fmt.Println("reset setting success")
	}
}

func showSetting() {
	if err := database.InitDB(config.GetDBPath()); err != nil {
		fmt.Println(err)
		return
	}

	settingService := service.SettingService{}
	theme, err := settingService.GetTheme()
	if err != nil {
		fmt.Println("get theme failed:", err)
	}
	mustChange, err := settingService.GetMustChangePassword()
	if err != nil {
		fmt.Println("get must-change flag failed:", err)
	}
	fmt.Println("current panel settings as follows:")
	fmt.Println("admin username:", config.GetAdminUsername())
	fmt.Println("theme:", theme)
	fmt.Println("must change password:", mustChange)
	fmt.Println("port:", config.GetPort())
}

func initAdminPassword(password string) {
	if err := database.InitDB(config.GetDBPath()); err != nil {
		fmt.Println(err)
		return
	}

	authService := service.AuthService{}
	if err := authService.InitializePasswordHash(password); err != nil {
		fmt.Println("initialize admin password failed:", err)
	} else {
		fmt.Println("admin password initialized (no-op if one was already set)")
	}
}

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   config.GetName(),
		Short: "Self-hosted firearms inventory tracker",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var reset bool
	var show bool
	var adminPassword string
	settingCmd := &cobra.Command{
		Use:   "setting",
		Short: "Inspect or reset panel settings",
		Run: func(cmd *cobra.Command, args []string) {
			if reset {
				resetSetting()
			}
			if adminPassword != "" {
				initAdminPassword(adminPassword)
			}
			if show {
				showSetting()
			}
		},
	}
	settingCmd.Flags().BoolVar(&reset, "reset", false, "delete all persisted settings")
	settingCmd.Flags().BoolVar(&show, "show", false, "print current settings")
	settingCmd.Flags().StringVar(&adminPassword, "password", "", "initialize the legacy admin password (first run only)")

	hashCmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			hash, err := crypto.HashPasswordAsBcrypt(args[0])
			if err != nil {
				fmt.Println("hash failed:", err)
				os.Exit(1)
			}
			fmt.Println(hash)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.GetVersion())
		},
	}

	rootCmd.AddCommand(settingCmd, hashCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
