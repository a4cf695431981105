package libgl

import (
	"fmt"
	"log"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

var shaderMetaPattern = regexp.MustCompile(`(?m)^\/\/meta:(\w+)(.+)$`)
var shaderDefinePattern = regexp.MustCompile(`(?m)^\s*(\/\/)?\s*#define ([\w\d]+) ?(.*)$`)
var shaderVersionPattern = regexp.MustCompile(`(?m)^\s*#version.+$`)

type shaderPipeline struct {
	glId      uint32
	vertStage ShaderProgram
	fragStage ShaderProgram
}

type UnboundShaderPipeline interface {
	LabeledGlObject
	Id() uint32
	Bind() BoundShaderPipeline
	Attach(program ShaderProgram, stages int)
	VertexStage() ShaderProgram
	FragmentStage() ShaderProgram
	// Delete deletes the pipeline and its attached programs.
	Delete()
}

type BoundShaderPipeline interface {
	UnboundShaderPipeline
}

func NewPipeline() UnboundShaderPipeline {
	var id uint32
	gl.CreateProgramPipelines(1, &id)
	return &shaderPipeline{
		glId: id,
	}
}

func (p *shaderPipeline) Id() uint32 {
	return p.glId
}

func (p *shaderPipeline) SetDebugLabel(label string) {
	setObjectLabel(gl.PROGRAM_PIPELINE, p.glId, label)
}

func (p *shaderPipeline) Attach(program ShaderProgram, stages int) {
	gl.UseProgramStages(p.glId, uint32(stages), program.Id())
	if stages&gl.VERTEX_SHADER_BIT != 0 {
		p.vertStage = program
	}
	if stages&gl.FRAGMENT_SHADER_BIT != 0 {
		p.fragStage = program
	}
}

func (p *shaderPipeline) VertexStage() ShaderProgram {
	return p.vertStage
}

func (p *shaderPipeline) FragmentStage() ShaderProgram {
	return p.fragStage
}

func (p *shaderPipeline) Bind() BoundShaderPipeline {
	State.BindProgramPipeline(p.glId)
	return BoundShaderPipeline(p)
}

func (p *shaderPipeline) Delete() {
	if p.vertStage != nil {
		p.vertStage.Delete()
	}
	if p.fragStage != nil && p.fragStage != p.vertStage {
		p.fragStage.Delete()
	}
	State.ForgetProgramPipeline(p.glId)
	gl.DeleteProgramPipelines(1, &p.glId)
	p.glId = 0
}

type glslDef struct {
	marker  string
	name    string
	value   string
	boolean bool
}

type program struct {
	uniformLocations map[string]int32
	definitions      map[string]glslDef
	versionEnd       int
	glId             uint32
	name             string
	sourceTemplate   string
	sourceLive       string
	stage            int
}

type ShaderProgram interface {
	Id() uint32
	Name() string
	Compile() error
	// CompileWith overrides #define values of the source; unknown names are
	// inserted right after the #version directive.
	CompileWith(defs map[string]string) error
	Delete()
	GetUniformLocation(name string) int32
	SetUniform(name string, value any)
	// TrySetUniform silently ignores uniforms the program does not use.
	TrySetUniform(name string, value any) bool
	Source() string
}

// NewShader prepares a separable program for the given stage. A
// `//meta:name <name>` line names the program in logs.
func NewShader(source string, stage int) ShaderProgram {
	name := "untitled"
	for _, match := range shaderMetaPattern.FindAllStringSubmatch(source, -1) {
		if strings.EqualFold(match[1], "name") {
			name = strings.TrimSpace(match[2])
		}
	}

	defineMatches := shaderDefinePattern.FindAllStringSubmatch(source, -1)
	definitions := make(map[string]glslDef, len(defineMatches))
	defineMarkers := make(map[string]string, len(defineMatches))
	for i, match := range defineMatches {
		value := strings.TrimSpace(match[3])
		marker := fmt.Sprintf("$def_%v$", i)
		boolean := value == ""
		if boolean && match[1] == "//" {
			value = "false"
		}
		definitions[strings.ToLower(match[2])] = glslDef{
			marker:  marker,
			name:    match[2],
			value:   value,
			boolean: boolean,
		}
		defineMarkers[match[0]] = marker
	}
	source = shaderDefinePattern.ReplaceAllStringFunc(source, func(s string) string {
		return defineMarkers[s]
	})

	versionEnd := 0
	if loc := shaderVersionPattern.FindStringIndex(source); loc != nil {
		versionEnd = loc[1]
	}

	return &program{
		definitions:    definitions,
		name:           name,
		stage:          stage,
		sourceTemplate: source,
		versionEnd:     versionEnd,
	}
}

func (prog *program) Name() string {
	return prog.name
}

func (prog *program) Compile() error {
	return prog.CompileWith(nil)
}

func (prog *program) CompileWith(defs map[string]string) error {
	source := expandDefines(prog.sourceTemplate, prog.versionEnd, prog.definitions, defs)

	cStrs, free := gl.Strs(source + "\x00")
	id := gl.CreateShaderProgramv(uint32(prog.stage), 1, cStrs)
	free()

	var ok int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &ok)
	if ok == gl.FALSE {
		defer gl.DeleteProgram(id)
		return fmt.Errorf("failed to link %v shader, log: %v", prog.name, readProgramInfoLog(id))
	}

	prog.glId = id
	prog.sourceLive = source
	prog.uniformLocations = map[string]int32{}
	return nil
}

// expandDefines substitutes the #define markers of a template produced by
// NewShader.
func expandDefines(source string, versionEnd int, definitions map[string]glslDef, defs map[string]string) string {
	for n, v := range defs {
		k := strings.ToLower(n)
		if def, ok := definitions[k]; ok {
			source = strings.Replace(source, def.marker, formatDefine(def.name, v, def.boolean), 1)
		} else {
			source = source[:versionEnd] + fmt.Sprintf("\n#define %v %v", n, v) + source[versionEnd:]
		}
	}
	for _, def := range definitions {
		source = strings.Replace(source, def.marker, formatDefine(def.name, def.value, def.boolean), 1)
	}
	return source
}

func formatDefine(name, value string, boolean bool) string {
	if !boolean {
		return fmt.Sprintf("#define %v %v", name, value)
	}
	if value == "false" {
		return fmt.Sprintf("// #define %v", name)
	}
	return fmt.Sprintf("#define %v", name)
}

func (prog *program) Source() string {
	return prog.sourceLive
}

func (prog *program) Id() uint32 {
	return prog.glId
}

func (prog *program) Delete() {
	gl.DeleteProgram(prog.glId)
	prog.glId = 0
}

func readProgramInfoLog(id uint32) string {
	var logLength int32
	gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	buf := make([]uint8, logLength+1)
	gl.GetProgramInfoLog(id, logLength, nil, &buf[0])
	return strings.TrimRight(string(buf), "\x00\r\n")
}

func (prog *program) GetUniformLocation(name string) int32 {
	if location, ok := prog.uniformLocations[name]; ok {
		return location
	}

	location := gl.GetUniformLocation(prog.glId, gl.Str(name+"\x00"))
	prog.uniformLocations[name] = location

	if location == -1 {
		log.Printf("%v shader: could not get location of %q\n", prog.name, name)
	}

	return location
}

func (prog *program) SetUniform(name string, value any) {
	location := prog.GetUniformLocation(name)
	if location == -1 {
		return
	}
	setProgramUniformAny(prog.glId, location, value)
}

func (prog *program) TrySetUniform(name string, value any) bool {
	location, ok := prog.uniformLocations[name]
	if !ok {
		location = gl.GetUniformLocation(prog.glId, gl.Str(name+"\x00"))
		prog.uniformLocations[name] = location
	}
	if location == -1 {
		return false
	}
	setProgramUniformAny(prog.glId, location, value)
	return true
}

func setProgramUniformAny(prog uint32, location int32, value any) {
	for refVal := reflect.ValueOf(value); refVal.Kind() == reflect.Ptr; refVal = reflect.ValueOf(value) {
		value = refVal.Elem().Interface()
	}

	switch v := value.(type) {
	case float64:
		gl.ProgramUniform1d(prog, location, v)
	case float32:
		gl.ProgramUniform1f(prog, location, v)
	case int:
		gl.ProgramUniform1i(prog, location, int32(v))
	case int32:
		gl.ProgramUniform1i(prog, location, v)
	case uint32:
		gl.ProgramUniform1ui(prog, location, v)
	case bool:
		var i int32
		if v {
			i = 1
		}
		gl.ProgramUniform1i(prog, location, i)
	case mgl32.Vec2:
		gl.ProgramUniform2f(prog, location, v.X(), v.Y())
	case mgl32.Vec3:
		gl.ProgramUniform3f(prog, location, v.X(), v.Y(), v.Z())
	case mgl32.Vec4:
		gl.ProgramUniform4f(prog, location, v.X(), v.Y(), v.Z(), v.W())
	case mgl64.Vec3:
		gl.ProgramUniform3d(prog, location, v.X(), v.Y(), v.Z())
	case mgl32.Mat3:
		gl.ProgramUniformMatrix3fv(prog, location, 1, false, &v[0])
	case mgl32.Mat4:
		gl.ProgramUniformMatrix4fv(prog, location, 1, false, &v[0])
	case mgl64.Mat4:
		gl.ProgramUniformMatrix4dv(prog, location, 1, false, &v[0])
	default:
		log.Panicf("Unsupported uniform type %v", reflect.TypeOf(value))
	}
}
