package config

import (
	"fmt"
	"strings"
)

const (
	portEnvVar   = "PORT"
	appNameVar   = "APP_NAME"
	folderEnvVar = "FOLDER"
	envVar       = "ENV"
)

type EnvVars struct {
	overlay Overlay
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.overlay.lookup(portEnvVar, "3000")
	if !strings.HasPrefix(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.overlay.lookup(appNameVar, "Event Portal")
}

func (e EnvVars) GetDataFolder() string {
	return e.overlay.lookup(folderEnvVar, "./data")
}

func (e EnvVars) GetEnv() string {
	return e.overlay.lookup(envVar, "DEV")
}
