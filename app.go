package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ice-rage/DeskPlugin-sub000/pkg/config"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/desk"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/document"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/drafting"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/engine"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/kernel"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/kernel/sdfx"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/params"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/tessellate"
	"github.com/rs/zerolog"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// errInvalidParameters is returned when a build is requested while some
// parameter is out of range.
var errInvalidParameters = errors.New("parameters out of range")

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx context.Context

	mu         sync.Mutex
	engine     *engine.Engine
	kernel     kernel.Kernel
	store      document.Store
	closeStore func() error
	drafter    *drafting.Drafter
	builder    *desk.Builder
	params     *params.DeskParameters
	last       *document.Assembly
	log        zerolog.Logger
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable error or warning for the frontend.
// Parameter is set when the problem belongs to one desk parameter.
type EvalErrorData struct {
	Line      int    `json:"line"`
	Col       int    `json:"col"`
	Parameter string `json:"parameter,omitempty"`
	Message   string `json:"message"`
}

// ParameterData is one row of the parameter form.
type ParameterData struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Group       string `json:"group"`
	Value       int    `json:"value"`
	Min         int    `json:"min"`
	Max         int    `json:"max"`
	Valid       bool   `json:"valid"`
	Message     string `json:"message,omitempty"`
}

// FormData is the parameter form: every active parameter plus the current
// leg and handle types.
type FormData struct {
	Parameters []ParameterData `json:"parameters"`
	LegType    string          `json:"legType"`
	HandleType string          `json:"handleType"`
	Valid      bool            `json:"valid"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
	Form     FormData        `json:"form"`
}

// NewApp creates an App configured from the environment. A bad kernel or
// store setting falls back to sdfx and an in-memory store.
func NewApp() *App {
	cfg := config.Load()
	log := cfg.Logger(os.Stderr)

	k, err := cfg.NewKernel()
	if err != nil {
		log.Warn().Err(err).Msg("falling back to sdfx kernel")
		k = sdfx.New(cfg.MeshCells)
	}
	store, closeStore, err := cfg.OpenStore()
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.DBPath).Msg("falling back to in-memory document")
		store, closeStore = document.NewMemoryStore(), func() error { return nil }
	}
	p, err := cfg.Parameters()
	if err != nil {
		log.Warn().Err(err).Str("preset", cfg.Preset).Msg("using default parameters")
		p = params.New()
	}

	a := newApp(k, store, p, log, drafting.WithModelName(cfg.ModelName))
	a.closeStore = closeStore
	return a
}

func newApp(k kernel.Kernel, store document.Store, p *params.DeskParameters, log zerolog.Logger, opts ...drafting.Option) *App {
	opts = append([]drafting.Option{drafting.WithLogger(log)}, opts...)
	d := drafting.New(k, store, opts...)
	return &App{
		engine:     engine.NewEngine(),
		kernel:     k,
		store:      store,
		closeStore: func() error { return nil },
		drafter:    d,
		builder:    desk.NewBuilder(d, log),
		params:     p,
		log:        log,
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// shutdown is called by Wails when the window closes.
func (a *App) shutdown(context.Context) {
	if err := a.closeStore(); err != nil {
		a.log.Error().Err(err).Msg("close document store")
	}
}

func (a *App) context() context.Context {
	if a.ctx != nil {
		return a.ctx
	}
	return context.Background()
}

// Parameters returns the parameter form.
func (a *App) Parameters() FormData {
	a.mu.Lock()
	defer a.mu.Unlock()
	return formOf(a.params)
}

// SetParameter changes one value. Out-of-range values are kept and reported
// through the form, never rejected.
func (a *App) SetParameter(name string, value int) (FormData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n, err := params.ParseName(name)
	if err != nil {
		return formOf(a.params), err
	}
	if err := a.params.Set(n, value); err != nil {
		return formOf(a.params), err
	}
	return formOf(a.params), nil
}

// SetLegType switches between "round" and "square" legs.
func (a *App) SetLegType(name string) (FormData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, err := params.ParseLegType(name)
	if err != nil {
		return formOf(a.params), err
	}
	if err := a.params.SetLegType(t); err != nil {
		return formOf(a.params), err
	}
	return formOf(a.params), nil
}

// SetHandleType switches between "grip", "railing" and "knob" handles.
func (a *App) SetHandleType(name string) (FormData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	t, err := params.ParseHandleType(name)
	if err != nil {
		return formOf(a.params), err
	}
	if err := a.params.SetHandleType(t); err != nil {
		return formOf(a.params), err
	}
	return formOf(a.params), nil
}

// ApplyScript evaluates a parameter script over the current parameters. On
// success the result replaces them and, when every value is in range, the
// desk is rebuilt. Script errors leave the parameters untouched.
func (a *App) ApplyScript(source string) EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := newResult()

	p, evalErrs, err := a.engine.Evaluate(a.params, source)
	if err != nil {
		a.log.Error().Err(err).Msg("script evaluation failed")
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		result.Form = formOf(a.params)
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		result.Form = formOf(a.params)
		return result
	}

	a.params = p
	for _, w := range engine.Warnings(p) {
		result.Warnings = append(result.Warnings, EvalErrorData{Parameter: w.Parameter, Message: w.Message})
	}
	result.Form = formOf(p)
	if len(result.Warnings) > 0 {
		return result
	}
	a.build(&result)
	return result
}

// Build regenerates the desk from the current parameters and returns one
// mesh per part. Invalid parameters are reported and nothing is built.
func (a *App) Build() EvalResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := newResult()
	result.Form = formOf(a.params)
	for _, w := range engine.Warnings(a.params) {
		result.Warnings = append(result.Warnings, EvalErrorData{Parameter: w.Parameter, Message: w.Message})
	}
	if len(result.Warnings) > 0 {
		result.Errors = append(result.Errors, EvalErrorData{Message: errInvalidParameters.Error()})
		return result
	}
	a.build(&result)
	return result
}

// build runs the desk builder and tessellates the committed assembly into
// result. The caller holds a.mu.
func (a *App) build(result *EvalResult) {
	asm, err := a.builder.BuildDesk(a.context(), a.params)
	if err != nil {
		a.log.Error().Err(err).Msg("build failed")
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return
	}
	a.last = asm

	meshes, err := tessellate.Tessellate(asm, a.kernel)
	if err != nil {
		a.log.Error().Err(err).Msg("tessellate failed")
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return
	}
	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
}

// ExportSTL writes the last built desk to path. It needs the sdfx kernel.
func (a *App) ExportSTL(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	sk, ok := a.kernel.(*sdfx.SdfxKernel)
	if !ok {
		return fmt.Errorf("export stl: kernel %T cannot write STL", a.kernel)
	}
	if a.last == nil || len(a.last.Parts) == 0 {
		return fmt.Errorf("export stl: nothing built yet")
	}
	if err := sk.WriteSTL(path, a.last.Solids()...); err != nil {
		return fmt.Errorf("export stl: %w", err)
	}
	a.log.Info().Str("path", path).Int("parts", len(a.last.Parts)).Msg("exported STL")
	return nil
}

// ExportDXF writes the profile outlines of the last built desk to path.
func (a *App) ExportDXF(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	sketch := a.drafter.Sketch()
	if len(sketch) == 0 {
		return fmt.Errorf("export dxf: nothing built yet")
	}
	if err := drafting.WriteDXF(path, sketch); err != nil {
		return fmt.Errorf("export dxf: %w", err)
	}
	a.log.Info().Str("path", path).Int("outlines", len(sketch)).Msg("exported DXF")
	return nil
}

// newResult returns a result whose slices serialize as [] rather than null.
func newResult() EvalResult {
	return EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}

func formOf(p *params.DeskParameters) FormData {
	form := FormData{
		Parameters: []ParameterData{},
		LegType:    p.LegType().String(),
		HandleType: p.HandleType().String(),
		Valid:      p.Valid(),
	}
	for _, g := range p.Groups() {
		for _, v := range g.Parameters() {
			form.Parameters = append(form.Parameters, ParameterData{
				Name:        v.Name.String(),
				Description: v.Description(),
				Group:       g.Name.String(),
				Value:       v.Value,
				Min:         v.Min,
				Max:         v.Max,
				Valid:       v.Valid(),
				Message:     v.Message(),
			})
		}
	}
	return form
}
