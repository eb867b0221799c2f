//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/document"
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/engine"
	"github.com/adamnemecek/geometry-sketchpad/backend-go/internal/geom"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine(engine.NewViewport(
		geom.Vec2(0, 0),
		geom.Vec2(20, 15),
		geom.Vec2(1280, 960),
	))

	// Create the engine API object
	sketchEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	sketchEngine.Set("loadDocument", js.FuncOf(loadDocument))
	sketchEngine.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	sketchEngine.Set("insertEntity", js.FuncOf(insertEntity))
	sketchEngine.Set("removeEntity", js.FuncOf(removeEntity))
	sketchEngine.Set("moveEntity", js.FuncOf(moveEntity))
	sketchEngine.Set("step", js.FuncOf(step))
	sketchEngine.Set("setViewport", js.FuncOf(setViewport))

	// --- Queries (frontend ← backend) ---
	sketchEngine.Set("hitTest", js.FuncOf(hitTest))
	sketchEngine.Set("queryRegion", js.FuncOf(queryRegion))
	sketchEngine.Set("getGeometry", js.FuncOf(getGeometry))
	sketchEngine.Set("getDefinition", js.FuncOf(getDefinition))
	sketchEngine.Set("getEntities", js.FuncOf(getEntities))
	sketchEngine.Set("getViewport", js.FuncOf(getViewport))

	// Register on global scope
	js.Global().Set("sketchEngine", sketchEngine)

	// Signal that WASM is ready
	js.Global().Set("sketchWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func errResult(err error) interface{} {
	return js.ValueOf(map[string]interface{}{"error": err.Error()})
}

// toJSON marshals a value to a JSON string for the JS side.
func toJSON(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return js.ValueOf(`{"error":"marshal failed"}`)
	}
	return js.ValueOf(string(data))
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(map[string]interface{}{"error": "missing document JSON"})
	}

	var doc document.SketchDocument
	if err := json.Unmarshal([]byte(args[0].String()), &doc); err != nil {
		return errResult(err)
	}

	// Fresh engine so stale entities from the previous document don't linger
	eng = engine.NewEngine(eng.Viewport())
	if err := doc.LoadInto(eng); err != nil {
		return errResult(err)
	}

	return js.ValueOf(map[string]interface{}{"ok": true})
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	sketchID := "sketch_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		sketchID = args[0].String()
	}

	doc := document.NewSampleDocument(sketchID)
	eng = engine.NewEngine(eng.Viewport())
	if err := doc.LoadInto(eng); err != nil {
		return errResult(err)
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func insertEntity(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf(map[string]interface{}{"error": "entity id and definition JSON required"})
	}

	id := args[0].String()
	var def engine.Definition
	if err := json.Unmarshal([]byte(args[1].String()), &def); err != nil {
		return errResult(err)
	}

	eng.Queue(engine.Inserted(engine.Entity(id), def))
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func removeEntity(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}

	id := engine.Entity(args[0].String())
	def, ok := eng.Definition(id)
	if !ok {
		return js.ValueOf(map[string]interface{}{"error": "entity not found"})
	}

	eng.Queue(engine.Removed(id, def))
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func moveEntity(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return nil
	}

	id := engine.Entity(args[0].String())
	pos := geom.Vec2(args[1].Float(), args[2].Float())
	eng.Queue(engine.Moved(id, pos))
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// step runs one solve frame over the queued events and returns the diff as a
// JSON string.
func step(this js.Value, args []js.Value) interface{} {
	updates, err := eng.Step()
	if err != nil {
		return errResult(err)
	}
	return toJSON(updates)
}

func setViewport(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}

	var vp engine.Viewport
	if err := json.Unmarshal([]byte(args[0].String()), &vp); err != nil {
		return errResult(err)
	}
	if vp.VirtualSize.X <= 0 || vp.VirtualSize.Y <= 0 || vp.ActualSize.X <= 0 || vp.ActualSize.Y <= 0 {
		return js.ValueOf(map[string]interface{}{"error": "viewport sizes must be positive"})
	}

	eng.SetViewport(vp)
	return js.ValueOf(map[string]interface{}{"ok": true})
}

// --- Query Handlers ---

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("[]")
	}
	p := geom.Vec2(args[0].Float(), args[1].Float())
	return toJSON(eng.HitTest(p))
}

// queryRegion returns the entities indexed inside a pixel-space rectangle,
// for marquee selection.
func queryRegion(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return js.ValueOf("[]")
	}
	box := geom.NewAABB(args[0].Float(), args[1].Float(), args[2].Float(), args[3].Float())
	return toJSON(eng.QueryRegion(box))
}

func getGeometry(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("null")
	}
	g, ok := eng.Geometry(engine.Entity(args[0].String()))
	if !ok {
		return js.ValueOf("null")
	}
	return toJSON(g)
}

func getDefinition(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("null")
	}
	def, ok := eng.Definition(engine.Entity(args[0].String()))
	if !ok {
		return js.ValueOf("null")
	}
	return toJSON(def)
}

func getEntities(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.Entities())
}

func getViewport(this js.Value, args []js.Value) interface{} {
	return toJSON(eng.Viewport())
}
