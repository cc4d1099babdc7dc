// Package scenario loads Lua board scenarios and replays them against a
// fresh board with forced coin flips.
//
// A script returns a Scenario built with Scenario.new and chained steps:
//
//	local s = Scenario.new{name = "three rows", rows = 3, batch = 1}
//	s:drop("LRL")
//	s:expect_last_path{0, 0, 1}
//	return s
package scenario

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const scenarioTypeName = "beanmachine.scenario"

// Step kinds.
const (
	StepDrop           = "drop"
	StepSimulate       = "simulate"
	StepTick           = "tick"
	StepReset          = "reset"
	StepSetRate        = "set_rate"
	StepRejectRate     = "reject_rate"
	StepExpectBins     = "expect_bins"
	StepExpectLastPath = "expect_last_path"
	StepExpectTotal    = "expect_total"
	StepExpectPin      = "expect_pin"
	StepExpectBatches  = "expect_batches"
)

// Scenario is a loaded script: the board shape plus ordered steps.
type Scenario struct {
	Name  string
	Rows  int
	Batch int
	Rate  float64
	Seed  int64
	Steps []Step
}

// Step is one scripted action or expectation.
type Step struct {
	Kind    string
	Choices string
	Count   int
	Value   float64
	Row     int
	Pin     int
	Ints    []int
	Left    int
	Right   int
	Line    string
}

// LoadFile loads the scenario returned by the Lua script at path.
func LoadFile(path string) (*Scenario, error) {
	state := newState()
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	scenario, err := run(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

// LoadString loads the scenario returned by a Lua chunk named name.
func LoadString(name, source string) (*Scenario, error) {
	state := newState()
	if err := lua.LoadBuffer(state, source, name, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	scenario, err := run(state)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = name
	}
	return scenario, nil
}

func newState() *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)

	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{{Name: "new", Function: scenarioNew}}, 0)
	state.SetGlobal("Scenario")
	return state
}

func run(state *lua.State) (*Scenario, error) {
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return a Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned an invalid Scenario")
	}
	return scenario, nil
}

func scenarioNew(state *lua.State) int {
	lua.CheckType(state, 1, lua.TypeTable)
	scenario := &Scenario{
		Name:  optStringField(state, 1, "name", ""),
		Rows:  optIntField(state, 1, "rows", 0),
		Batch: optIntField(state, 1, "batch", 1),
		Rate:  optNumberField(state, 1, "rate", 15),
		Seed:  int64(optIntField(state, 1, "seed", 1)),
	}
	if scenario.Rows <= 0 {
		lua.ArgumentError(state, 1, "rows must be positive")
	}
	if scenario.Batch <= 0 {
		lua.ArgumentError(state, 1, "batch must be positive")
	}
	state.PushUserData(scenario)
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: StepDrop, Function: func(state *lua.State) int {
		return appendStep(state, Step{Kind: StepDrop, Choices: lua.CheckString(state, 2)})
	}},
	{Name: StepSimulate, Function: func(state *lua.State) int {
		return appendStep(state, Step{Kind: StepSimulate, Count: lua.CheckInteger(state, 2)})
	}},
	{Name: StepTick, Function: func(state *lua.State) int {
		return appendStep(state, Step{Kind: StepTick, Value: lua.CheckNumber(state, 2)})
	}},
	{Name: StepReset, Function: func(state *lua.State) int {
		return appendStep(state, Step{Kind: StepReset})
	}},
	{Name: StepSetRate, Function: func(state *lua.State) int {
		return appendStep(state, Step{Kind: StepSetRate, Value: lua.CheckNumber(state, 2)})
	}},
	{Name: StepRejectRate, Function: func(state *lua.State) int {
		return appendStep(state, Step{Kind: StepRejectRate, Value: lua.CheckNumber(state, 2)})
	}},
	{Name: StepExpectBins, Function: func(state *lua.State) int {
		return appendStep(state, Step{Kind: StepExpectBins, Ints: checkInts(state, 2)})
	}},
	{Name: StepExpectLastPath, Function: func(state *lua.State) int {
		return appendStep(state, Step{Kind: StepExpectLastPath, Ints: checkInts(state, 2)})
	}},
	{Name: StepExpectTotal, Function: func(state *lua.State) int {
		return appendStep(state, Step{Kind: StepExpectTotal, Count: lua.CheckInteger(state, 2)})
	}},
	{Name: StepExpectBatches, Function: func(state *lua.State) int {
		return appendStep(state, Step{Kind: StepExpectBatches, Count: lua.CheckInteger(state, 2)})
	}},
	{Name: StepExpectPin, Function: func(state *lua.State) int {
		row := lua.CheckInteger(state, 2)
		pin := lua.CheckInteger(state, 3)
		lua.CheckType(state, 4, lua.TypeTable)
		return appendStep(state, Step{
			Kind:  StepExpectPin,
			Row:   row,
			Pin:   pin,
			Left:  optIntField(state, 4, "left", 0),
			Right: optIntField(state, 4, "right", 0),
		})
	}},
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

// appendStep records step and returns the scenario so calls can chain.
func appendStep(state *lua.State, step Step) int {
	scenario := checkScenario(state)
	lua.Where(state, 1)
	step.Line, _ = state.ToString(-1)
	state.Pop(1)
	step.Line = strings.TrimSuffix(step.Line, ": ")
	scenario.Steps = append(scenario.Steps, step)
	state.PushValue(1)
	return 1
}

func checkInts(state *lua.State, index int) []int {
	lua.CheckType(state, index, lua.TypeTable)
	index = state.AbsIndex(index)
	length := state.RawLength(index)
	values := make([]int, 0, length)
	for i := 1; i <= length; i++ {
		state.RawGetInt(index, i)
		value, ok := state.ToInteger(-1)
		state.Pop(1)
		if !ok {
			lua.ArgumentError(state, index, fmt.Sprintf("element %d must be an integer", i))
		}
		values = append(values, value)
	}
	return values
}

func optIntField(state *lua.State, index int, key string, def int) int {
	state.Field(index, key)
	missing := state.IsNoneOrNil(-1)
	value, ok := state.ToInteger(-1)
	state.Pop(1)
	switch {
	case missing:
		return def
	case !ok:
		lua.ArgumentError(state, index, key+" must be an integer")
	}
	return value
}

func optNumberField(state *lua.State, index int, key string, def float64) float64 {
	state.Field(index, key)
	missing := state.IsNoneOrNil(-1)
	value, ok := state.ToNumber(-1)
	state.Pop(1)
	switch {
	case missing:
		return def
	case !ok:
		lua.ArgumentError(state, index, key+" must be a number")
	}
	return value
}

func optStringField(state *lua.State, index int, key string, def string) string {
	state.Field(index, key)
	missing := state.IsNoneOrNil(-1)
	value, ok := state.ToString(-1)
	state.Pop(1)
	switch {
	case missing:
		return def
	case !ok:
		lua.ArgumentError(state, index, key+" must be a string")
	}
	return value
}
