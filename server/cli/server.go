package cli

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/juju/errors"
	"github.com/sigrelay/sigrelay/server"
	"github.com/sigrelay/sigrelay/server/command"
	"github.com/sigrelay/sigrelay/server/identifiers"
	"github.com/sigrelay/sigrelay/server/logger"
	"github.com/sigrelay/sigrelay/server/multierr"
	"github.com/spf13/pflag"
)

type serverHandler struct {
	args struct {
		config    string
		pprofAddr string
	}

	log    logger.Logger
	config server.Config
	props  Props
	server *server.Server
	mux    *server.Mux
}

func (h *serverHandler) RegisterFlags(c *command.Command, flags *pflag.FlagSet) {
	flags.StringVarP(&h.args.config, "config", "c", "", "config file to use")
	flags.StringVar(&h.args.pprofAddr, "pprof-addr", "", "when set, will enable pprof server (example: 127.0.0.1:6060)")
}

func (h *serverHandler) Handle(ctx context.Context, args []string) error {
	if err := h.configure(); err != nil {
		return errors.Trace(err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var pprofErrCh chan error

	if pprofAddr := h.args.pprofAddr; pprofAddr != "" {
		pprofListener, err := net.Listen("tcp", pprofAddr)
		if err != nil {
			return errors.Annotatef(err, "listen pprof: %q", pprofAddr)
		}

		h.log.Info(fmt.Sprintf("Listen pprof %s", pprofAddr), logger.Ctx{
			"local_addr": pprofAddr,
		})

		pprofErrCh = make(chan error, 1)

		go func() {
			pprofErrCh <- errors.Annotate(server.NewPProf().Start(ctx, pprofListener), "pprof")
		}()
	}

	listener, err := net.Listen("tcp", net.JoinHostPort(
		h.config.BindHost,
		strconv.Itoa(h.config.BindPort),
	))
	if err != nil {
		return errors.Annotate(err, "listen")
	}

	h.server = server.New(server.Params{
		TLSCertFile: h.config.TLS.Cert,
		TLSKeyFile:  h.config.TLS.Key,
	}, h.mux)

	defer listener.Close()

	addr, _ := listener.Addr().(*net.TCPAddr)
	h.log.Info("Listen", logger.Ctx{
		"local_addr": addr,
	})

	errs := multierr.New()
	errs.Add(h.server.Start(ctx, listener))

	if pprofErrCh != nil {
		cancel()
		errs.Add(<-pprofErrCh)
	}

	return errors.Trace(errs.Err())
}

func newServerCmd(props Props) *command.Command {
	h := &serverHandler{
		log:   props.Log,
		props: props,
	}

	return command.New(command.Params{
		Name:         "server",
		Desc:         "Starts the relay server (default)",
		FlagRegistry: h,
		Handler:      h,
		SubCommands:  nil,
	})
}

func (h *serverHandler) configure() (err error) {
	log := h.log

	configFiles := []string{}
	if h.args.config != "" {
		configFiles = append(configFiles, h.args.config)
	}

	h.config, err = server.ReadConfig(configFiles)
	if err != nil {
		return errors.Annotate(err, "read config")
	}

	c := h.config

	log.Info("Using config", logger.Ctx{
		"bind_host":               c.BindHost,
		"bind_port":               c.BindPort,
		"base_url":                c.BaseURL,
		"static_dir":              c.StaticDir,
		"tls":                     c.TLS.Cert != "",
		"send_welcome_message":    c.Relay.SendWelcomeMessage,
		"log_disconnects":         c.Relay.LogDisconnects,
		"announce_presence":       c.Relay.AnnouncePresence,
		"addressed_delivery":      c.Relay.AddressedDelivery,
		"max_channel_connections": c.Relay.MaxChannelConnections,
		"ping_interval":           c.Relay.PingInterval,
	})

	channels := server.NewChannelManager(func(channel identifiers.ChannelID) *server.Relay {
		return server.NewRelay(server.RelayParams{
			Channel: channel,
			Config:  c.Relay,
			Log:     log,
		})
	})

	h.mux = server.NewMux(server.MuxParams{
		Log:        log,
		BaseURL:    c.BaseURL,
		StaticDir:  c.StaticDir,
		ICEServers: c.ICEServers,
		Prometheus: c.Prometheus,
		Relay:      c.Relay,
		Channels:   channels,
	})

	return nil
}
