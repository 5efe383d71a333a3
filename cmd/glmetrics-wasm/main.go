//go:build js && wasm

// Command glmetrics-wasm instruments the page's WebGL2 canvas. Build with
// GOOS=js GOARCH=wasm and load it before the rendering module starts.
//
// Globals read at startup:
//
//	glmetricsConfig = {canvas: "canvas", variant: "module", logLevel: "info"}
//
// Globals exported:
//
//	tick(now)                  after every rendered frame
//	setNumberOfObjects(n)      module variant only
//	glmetricsAttachApp(app, m) mounts the control panel for a BenchmarkApp
package main

import (
	"syscall/js"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/glmetrics/internal/display"
	"github.com/ethpandaops/glmetrics/internal/instrument"
	"github.com/ethpandaops/glmetrics/internal/panel"
	"github.com/ethpandaops/glmetrics/internal/version"
	"github.com/ethpandaops/glmetrics/internal/webhost"
)

type options struct {
	canvasID string
	variant  instrument.Variant
	logLevel logrus.Level
}

func readOptions(log logrus.FieldLogger) options {
	opts := options{
		canvasID: "canvas",
		variant:  instrument.VariantModule,
		logLevel: logrus.InfoLevel,
	}

	cfg := js.Global().Get("glmetricsConfig")
	if cfg.Type() != js.TypeObject {
		return opts
	}

	if v := cfg.Get("canvas"); v.Type() == js.TypeString {
		opts.canvasID = v.String()
	}

	if v := cfg.Get("variant"); v.Type() == js.TypeString {
		variant, err := instrument.ParseVariant(v.String())
		if err != nil {
			log.WithError(err).Warn("Ignoring variant")
		} else {
			opts.variant = variant
		}
	}

	if v := cfg.Get("logLevel"); v.Type() == js.TypeString {
		level, err := logrus.ParseLevel(v.String())
		if err != nil {
			log.WithError(err).Warn("Ignoring log level")
		} else {
			opts.logLevel = level
		}
	}

	return opts
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	opts := readOptions(log)
	log.SetLevel(opts.logLevel)

	log.WithFields(logrus.Fields{
		"version": version.Full(),
		"variant": opts.variant,
	}).Info("Starting glmetrics")

	doc := js.Global().Get("document")

	canvas := doc.Call("getElementById", opts.canvasID)
	if canvas.IsNull() || canvas.IsUndefined() {
		log.WithField("canvas", opts.canvasID).Error("Canvas not found")

		return
	}

	webhost.WatchContextLoss(log, canvas)

	// getContext returns the same instance to the rendering module later,
	// so decorating it here covers every draw the module issues.
	glctx := canvas.Call("getContext", "webgl2")
	if glctx.IsNull() || glctx.IsUndefined() {
		log.Error("WebGL2 is not available")

		return
	}

	elementID := display.ModuleElementID
	if opts.variant == instrument.VariantStandalone {
		elementID = display.StandaloneElementID
	}

	ctx := instrument.New(
		log,
		display.NewElementDisplay(display.NewDOM(), elementID),
		instrument.WithVariant(opts.variant),
		instrument.WithErrorHandler(func(err error) {
			log.WithError(err).Debug("Draw observation failed")
		}),
	)

	webgl := webhost.NewWebGL(glctx)
	webhost.Install(glctx, webgl, instrument.NewInterceptor(webgl, ctx))
	webhost.Export(log, ctx)

	js.Global().Set("glmetricsAttachApp", js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) == 0 {
			log.Error("glmetricsAttachApp requires the app instance")

			return nil
		}

		module := js.Undefined()
		if len(args) > 1 {
			module = args[1]
		}

		controller := panel.NewController(
			log,
			panel.NewJSApp(args[0], module),
			ctx,
			panel.RowSetter(doc),
			panel.DefaultSettings(),
		)

		if _, err := panel.Mount(log, controller, "benchmarkControlPanel"); err != nil {
			log.WithError(err).Error("Mounting control panel failed")

			return nil
		}

		if err := controller.Init(); err != nil {
			log.WithError(err).Error("Initializing control panel failed")
		}

		return nil
	}))

	select {}
}
