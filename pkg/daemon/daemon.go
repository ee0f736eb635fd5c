// Package daemon wires the voltage monitor together and exposes a small
// read-only HTTP API on a unix socket.
package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/psdlabs/voltguard/pkg/config"
	"github.com/psdlabs/voltguard/pkg/monitor"
	"github.com/psdlabs/voltguard/pkg/sensor"
)

var (
	conf        config.Config
	controlLoop *monitor.ControlLoop
	loadSource  *sensor.SystemLoadSource
)

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/status", getStatus)
	router.GET("/config", getConfig)
	router.GET("/version", getVersion)

	return router
}

// Run starts the monitor loop and the API server, and blocks until a
// termination signal arrives, the loop actuates a shutdown, or the loop
// fails. A non-nil return means the process must exit non-zero.
func Run(c config.Config, unixSocketPath string) error {
	conf = c

	voltage, err := sensor.NewHwmonVoltageSource(conf.DriverBus(), conf.I2CAddr())
	if err != nil {
		return pkgerrors.Wrap(err, "voltage sensor unavailable")
	}

	loadSource = sensor.NewSystemLoadSource()

	var reporter monitor.Reporter
	if conf.Debug() {
		reporter = monitor.NewConsoleReporter()
	} else {
		reporter, err = monitor.NewFileReporter(conf.LogPath())
		if err != nil {
			return err
		}
	}

	controlLoop = monitor.NewControlLoop(
		monitor.LoopOptions{
			Threshold:         conf.Threshold(),
			Interval:          conf.Interval(),
			UndervoltageLimit: conf.UndervoltageLimit(),
			Debug:             conf.Debug(),
		},
		voltage,
		loadSource,
		reporter,
		monitor.NewSystemShutdown(),
	)

	router := setupRoutes()
	srv := &http.Server{
		Handler: router,
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	stop := make(chan struct{})
	loopErr := make(chan error, 1)
	go func() {
		logrus.Debugln("main loop starts")
		loopErr <- controlLoop.Run(stop)
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigc:
		logrus.Infof("caught signal \"%s\": shutting down.", sig)
		close(stop)
		<-loopErr
	case runErr = <-loopErr:
		if runErr != nil {
			logrus.Errorf("monitor loop failed: %v", runErr)
		} else {
			logrus.Info("monitor loop finished")
		}
	}

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	logrus.Info("closing reporter")
	if err := reporter.Close(); err != nil {
		logrus.Errorf("failed to close reporter: %v", err)
	}

	logrus.Info("exiting")
	return runErr
}
