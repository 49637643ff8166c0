package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Broccolito/TidyFlow/internal/types"
)

// handleRunRScript implements the run_r_script tool
func (ms *MCPServer) handleRunRScript(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if fault := ms.session.EnsureWorkdir(); fault != nil {
		return faultResult(fault)
	}

	filename := request.GetString("filename", ms.session.PrimaryFile())
	filename = ensureRExtension(filename)
	args := request.GetStringSlice("args", nil)
	timeout := time.Duration(request.GetInt("timeout_sec", int(ms.cfg.Run.ScriptTimeout.Seconds()))) * time.Second
	saveRData := request.GetBool("save_rdata", true)

	path, fault := ms.session.ResolvePath(filename)
	if fault != nil {
		return faultResult(fault)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return faultResult(types.NewFault(types.CodeFileNotFound,
			fmt.Sprintf("File %s does not exist", filename),
			"Create and write code to the file first"))
	}

	var cmdArgs []string
	if saveRData {
		cmdArgs = append(cmdArgs, "--save")
	}
	cmdArgs = append(cmdArgs, path)
	cmdArgs = append(cmdArgs, args...)

	result, fault := ms.session.RunR(ctx, cmdArgs, timeout)
	if fault != nil {
		fault.Filename = filename
		return faultResult(fault)
	}

	if result.ExitCode != 0 {
		fault := types.NewFault(types.CodeScriptError,
			fmt.Sprintf("R script exited with status %d", result.ExitCode))
		fault.Filename = filename
		fault.Stderr = result.Stderr
		return faultResult(fault)
	}

	return okResult(map[string]any{
		"filename":        filename,
		"stdout":          result.Stdout,
		"stderr":          result.Stderr,
		"elapsed_seconds": result.Elapsed.Seconds(),
		"rdata_saved":     saveRData,
	})
}

// handleRunRExpression implements the run_r_expression tool
func (ms *MCPServer) handleRunRExpression(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if fault := ms.session.EnsureWorkdir(); fault != nil {
		return faultResult(fault)
	}

	expr, fault := requireString(request, "expr")
	if fault != nil {
		return faultResult(fault)
	}
	timeout := time.Duration(request.GetInt("timeout_sec", int(ms.cfg.Run.ExpressionTimeout.Seconds()))) * time.Second

	result, fault := ms.session.RunR(ctx, []string{"-e", expr}, timeout)
	if fault != nil {
		fault.Expression = expr
		return faultResult(fault)
	}

	if result.ExitCode != 0 {
		fault := types.NewFault(types.CodeScriptError,
			fmt.Sprintf("R expression exited with status %d", result.ExitCode))
		fault.Expression = expr
		fault.Stderr = result.Stderr
		return faultResult(fault)
	}

	return okResult(map[string]any{
		"expression":      expr,
		"stdout":          result.Stdout,
		"stderr":          result.Stderr,
		"elapsed_seconds": result.Elapsed.Seconds(),
	})
}

// handleInspectRObjects implements the inspect_r_objects tool
func (ms *MCPServer) handleInspectRObjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if fault := ms.session.EnsureWorkdir(); fault != nil {
		return faultResult(fault)
	}

	objects := request.GetStringSlice("objects", nil)
	strMaxLevel := request.GetInt("str_max_level", 1)
	timeout := time.Duration(request.GetInt("timeout_sec", int(ms.cfg.Run.ExpressionTimeout.Seconds()))) * time.Second

	rdataPath := filepath.Join(ms.session.Workdir(), ".RData")
	if _, err := os.Stat(rdataPath); errors.Is(err, os.ErrNotExist) {
		return faultResult(types.NewFault(types.CodeNoRData,
			"No .RData file found. Run a script with save_rdata=true first.",
			"Run an R script with save_rdata=true",
			"Create objects in R and save the workspace"))
	}

	inspectCode := buildInspectCode(objects, strMaxLevel)

	result, fault := ms.session.RunR(ctx, []string{"-e", inspectCode}, timeout)
	if fault != nil {
		return faultResult(fault)
	}

	if result.ExitCode != 0 {
		fault := types.NewFault(types.CodeScriptError,
			fmt.Sprintf("R inspection exited with status %d", result.ExitCode))
		fault.Stderr = result.Stderr
		return faultResult(fault)
	}

	return okResult(map[string]any{
		"stdout":            result.Stdout,
		"stderr":            result.Stderr,
		"objects_requested": objects,
		"elapsed_seconds":   result.Elapsed.Seconds(),
	})
}

// buildInspectCode generates the R snippet that loads .RData and prints
// object metadata: either the named objects with a str() dump, or a
// summary of the whole workspace.
func buildInspectCode(objects []string, strMaxLevel int) string {
	if len(objects) > 0 {
		quoted := make([]string, len(objects))
		for i, obj := range objects {
			quoted[i] = fmt.Sprintf("%q", obj)
		}
		return fmt.Sprintf(`
load('.RData')
objects_to_inspect <- c(%s)
results <- list()
for(obj_name in objects_to_inspect) {
    if(exists(obj_name)) {
        obj <- get(obj_name)
        results[[obj_name]] <- list(
            class = class(obj),
            typeof = typeof(obj),
            length = length(obj),
            dim = dim(obj),
            names = names(obj),
            str = capture.output(str(obj, max.level=%d))
        )
    } else {
        results[[obj_name]] <- "Object not found"
    }
}
print(results)
`, strings.Join(quoted, ", "), strMaxLevel)
	}

	return `
load('.RData')
obj_list <- ls()
if(length(obj_list) > 0) {
    results <- list()
    for(obj_name in obj_list) {
        obj <- get(obj_name)
        results[[obj_name]] <- list(
            class = class(obj),
            typeof = typeof(obj),
            length = length(obj),
            dim = dim(obj)
        )
    }
    print(results)
} else {
    print("No objects in workspace")
}
`
}

// handleWhichR implements the which_r tool
func (ms *MCPServer) handleWhichR(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exe, alternatives, ok := ms.session.FindInterpreter()
	if !ok {
		return faultResult(types.NewFault(types.CodeRNotFound,
			"R not found in PATH",
			"Install R from https://www.r-project.org/",
			"Add Rscript or R to your system PATH"))
	}

	return okResult(map[string]any{
		"executable":   exe,
		"alternatives": alternatives,
	})
}
