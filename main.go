package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"CamFaceTrack/Adhoc"
	"CamFaceTrack/camera"
	"CamFaceTrack/engine"
	iface "CamFaceTrack/interface"
	"CamFaceTrack/logger"
	"CamFaceTrack/monitor"
	"CamFaceTrack/tracker"

	"gopkg.in/yaml.v3"
)

type configStruct struct {
	HTTPPort      int    `yaml:"HTTPPort"`
	MetricsPort   int    `yaml:"MetricsPort"`
	Device        string `yaml:"device"`
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Framerate     int    `yaml:"framerate"`
	Autostart     bool   `yaml:"autostart"`
	TickMillis    int    `yaml:"tickMillis"`
	DevLog        bool   `yaml:"devLog"`
	UseRegServer  bool   `yaml:"UseRegServer"`
	RegServerPort int    `yaml:"RegServerPort"`
	RegServerHost string `yaml:"RegServerHost"`
}

func GetOutboundIP() (string, error) {
	// 8.8.8.8 is only used to resolve a routing path for the local
	// egress IP, no packets need to leave the machine
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)

	return localAddr.IP.String(), nil
}

func main() {
	configData, err := os.ReadFile("config.yaml")
	if err != nil {
		fmt.Println("Failed to read config file:", err)
		return
	}
	config := configStruct{}
	err = yaml.Unmarshal(configData, &config)
	if err != nil {
		fmt.Println("Failed to parse config file:", err)
		return
	}
	if err := logger.Init(config.DevLog); err != nil {
		fmt.Println("Failed to init logger:", err)
		return
	}
	defer logger.Sync()

	if config.HTTPPort == 0 {
		config.HTTPPort = 8080
	}
	if config.MetricsPort == 0 {
		config.MetricsPort = 9091
	}
	if config.Device == "" {
		config.Device = "/dev/video0"
	}
	if config.Width <= 0 || config.Height <= 0 {
		config.Width, config.Height = 640, 480
	}
	if config.Width%2 != 0 || config.Height%2 != 0 {
		fmt.Println(strings.Repeat("!", 64))
		fmt.Println("Width and height must be even for YUYV capture, falling back to 640x480")
		fmt.Println(strings.Repeat("!", 64))
		config.Width, config.Height = 640, 480
	}
	if config.Framerate <= 0 {
		config.Framerate = 30
	}
	if config.TickMillis <= 0 {
		config.TickMillis = 16
	}

	fmt.Println(strings.Repeat("#", 64))
	fmt.Println(" HTTP    Port:", config.HTTPPort)
	fmt.Println(" Metrics Port:", config.MetricsPort)
	fmt.Printf(" Camera      : %s %dx%d @%dfps\n", config.Device, config.Width, config.Height, config.Framerate)
	fmt.Println(" Autostart   :", config.Autostart)
	fmt.Println(" Cascade     :", tracker.CascadeAssetPath)
	fmt.Println(strings.Repeat("#", 64))
	fmt.Println("")

	ip, err := GetOutboundIP()
	if err != nil {
		logger.S().Warnf("failed to get outbound IP: %v", err)
		ip = "127.0.0.1"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	var wg sync.WaitGroup

	go monitor.StartMon(config.MetricsPort, ctx)

	if config.UseRegServer {
		Adhoc.RegServerCfg = Adhoc.RegServerConfig{}
		Adhoc.RegServerCfg.SetAddress(config.RegServerHost, config.RegServerPort)
		wg.Add(1)
		go Adhoc.SendAliveMessage(ip, config.HTTPPort, config.Device, ctx, &wg)
	}

	camCfg := iface.CameraConfig{
		Device:    config.Device,
		Width:     config.Width,
		Height:    config.Height,
		Framerate: config.Framerate,
	}
	ctrl := tracker.NewController(camCfg, config.Autostart,
		func() iface.Camera { return camera.New() },
		func() iface.FaceDetector { return engine.New() })

	hub := newEventHub()
	state := &controlState{}
	state.want.Store(config.Autostart)

	router := newRouter(ctrl, hub, state)
	go func() {
		if err := router.Run(fmt.Sprintf(":%d", config.HTTPPort)); err != nil {
			logger.Log().Fatal("HTTP server failed: " + err.Error())
		}
	}()

	ticker := time.NewTicker(time.Duration(config.TickMillis) * time.Millisecond)
	defer ticker.Stop()
hostLoop:
	for {
		select {
		case <-ctx.Done():
			break hostLoop
		case <-ticker.C:
			ctrl.Enabled = state.want.Load()
			ctrl.Tick(hub.publish)
		}
	}

	// signal the worker to stop and keep draining until it is reaped,
	// with a bounded number of shutdown ticks
	logger.S().Info("shutting down")
	ctrl.Enabled = false
	for i := 0; i < 200 && ctrl.WorkerCount() > 0; i++ {
		ctrl.Tick(nil)
		time.Sleep(10 * time.Millisecond)
	}
	wg.Wait()
}
