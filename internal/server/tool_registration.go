package server

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	toolSetWorkdir       = "set_workdir"
	toolGetState         = "get_state"
	toolCreateRFile      = "create_r_file"
	toolRenameRFile      = "rename_r_file"
	toolSetPrimaryFile   = "set_primary_file"
	toolAppendRCode      = "append_r_code"
	toolWriteRCode       = "write_r_code"
	toolRunRScript       = "run_r_script"
	toolRunRExpression   = "run_r_expression"
	toolListExports      = "list_exports"
	toolReadExport       = "read_export"
	toolPreviewTable     = "preview_table"
	toolGgplotStyleCheck = "ggplot_style_check"
	toolInspectRObjects  = "inspect_r_objects"
	toolWhichR           = "which_r"
	toolListRFiles       = "list_r_files"
)

// registerTools registers all MCP tools with handlers
func (ms *MCPServer) registerTools() {
	add := func(tool mcp.Tool, h toolHandler) {
		ms.server.AddTool(tool, server.ToolHandlerFunc(ms.guard(tool.Name, h)))
	}

	add(mcp.NewTool(toolSetWorkdir,
		mcp.WithDescription("Set the working directory for all R operations"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Directory path to confine the session to"),
		),
		mcp.WithBoolean("create",
			mcp.Description("Create the directory if it does not exist"),
			mcp.DefaultBool(true),
		),
	), ms.handleSetWorkdir)

	add(mcp.NewTool(toolGetState,
		mcp.WithDescription("Get current tidyflow state and configuration"),
	), ms.handleGetState)

	add(mcp.NewTool(toolCreateRFile,
		mcp.WithDescription("Create a new R script file"),
		mcp.WithString("filename",
			mcp.Required(),
			mcp.Description("Name of the R file to create"),
		),
		mcp.WithBoolean("overwrite",
			mcp.Description("Replace the file if it already exists"),
			mcp.DefaultBool(false),
		),
		mcp.WithBoolean("scaffold",
			mcp.Description("Start the file with the standard scaffold header"),
			mcp.DefaultBool(true),
		),
	), ms.handleCreateRFile)

	add(mcp.NewTool(toolRenameRFile,
		mcp.WithDescription("Rename an R script file"),
		mcp.WithString("old_name",
			mcp.Required(),
			mcp.Description("Current file name"),
		),
		mcp.WithString("new_name",
			mcp.Required(),
			mcp.Description("New file name"),
		),
		mcp.WithBoolean("overwrite",
			mcp.Description("Replace the target if it already exists"),
			mcp.DefaultBool(false),
		),
	), ms.handleRenameRFile)

	add(mcp.NewTool(toolSetPrimaryFile,
		mcp.WithDescription("Set the primary R script file"),
		mcp.WithString("filename",
			mcp.Required(),
			mcp.Description("Existing R file to use as the default target"),
		),
	), ms.handleSetPrimaryFile)

	add(mcp.NewTool(toolAppendRCode,
		mcp.WithDescription("Append R code to an existing script file"),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("R code to append"),
		),
		mcp.WithString("filename",
			mcp.Description("Target file (defaults to the primary file)"),
		),
		mcp.WithBoolean("ensure_trailing_newline",
			mcp.Description("Terminate the appended code with a newline"),
			mcp.DefaultBool(true),
		),
	), ms.handleAppendRCode)

	add(mcp.NewTool(toolWriteRCode,
		mcp.WithDescription("Write R code to a script file"),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("R code to write"),
		),
		mcp.WithString("filename",
			mcp.Description("Target file (defaults to the primary file)"),
		),
		mcp.WithBoolean("overwrite",
			mcp.Description("Replace the file if it already exists"),
			mcp.DefaultBool(false),
		),
		mcp.WithBoolean("use_scaffold_header",
			mcp.Description("Prepend the standard scaffold header"),
			mcp.DefaultBool(true),
		),
	), ms.handleWriteRCode)

	add(mcp.NewTool(toolRunRScript,
		mcp.WithDescription("Execute an R script file"),
		mcp.WithString("filename",
			mcp.Description("Script to run (defaults to the primary file)"),
		),
		mcp.WithArray("args",
			mcp.Description("Command-line arguments passed to the script"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithNumber("timeout_sec",
			mcp.Description("Maximum run time in seconds"),
			mcp.DefaultNumber(120),
		),
		mcp.WithBoolean("save_rdata",
			mcp.Description("Save the R workspace to .RData after the run"),
			mcp.DefaultBool(true),
		),
	), ms.handleRunRScript)

	add(mcp.NewTool(toolRunRExpression,
		mcp.WithDescription("Execute a single R expression"),
		mcp.WithString("expr",
			mcp.Required(),
			mcp.Description("R expression to evaluate"),
		),
		mcp.WithNumber("timeout_sec",
			mcp.Description("Maximum run time in seconds"),
			mcp.DefaultNumber(60),
		),
	), ms.handleRunRExpression)

	add(mcp.NewTool(toolListExports,
		mcp.WithDescription("List files in the working directory"),
		mcp.WithString("glob",
			mcp.Description("Glob pattern to match file names against"),
			mcp.DefaultString("*"),
		),
		mcp.WithString("sort_by",
			mcp.Description("Sort key: mtime, size or name"),
			mcp.DefaultString("mtime"),
		),
		mcp.WithBoolean("descending",
			mcp.Description("Sort in descending order"),
			mcp.DefaultBool(true),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries to return"),
			mcp.DefaultNumber(200),
		),
	), ms.handleListExports)

	add(mcp.NewTool(toolReadExport,
		mcp.WithDescription("Read a file from the working directory"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("File name to read"),
		),
		mcp.WithNumber("max_bytes",
			mcp.Description("Maximum number of bytes to return"),
			mcp.DefaultNumber(50000),
		),
		mcp.WithBoolean("as_text",
			mcp.Description("Return text content instead of base64"),
			mcp.DefaultBool(true),
		),
		mcp.WithString("encoding",
			mcp.Description("Text encoding of the file"),
			mcp.DefaultString("utf-8"),
		),
	), ms.handleReadExport)

	add(mcp.NewTool(toolPreviewTable,
		mcp.WithDescription("Preview a CSV/TSV file as a table"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("File name to preview"),
		),
		mcp.WithString("delimiter",
			mcp.Description("Field delimiter"),
			mcp.DefaultString(","),
		),
		mcp.WithNumber("max_rows",
			mcp.Description("Maximum number of data rows to return"),
			mcp.DefaultNumber(50),
		),
	), ms.handlePreviewTable)

	add(mcp.NewTool(toolGgplotStyleCheck,
		mcp.WithDescription("Analyze and optimize ggplot code for publication-quality styling"),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("R code to analyze"),
		),
	), ms.handleGgplotStyleCheck)

	add(mcp.NewTool(toolInspectRObjects,
		mcp.WithDescription("Inspect R objects from the last saved session"),
		mcp.WithArray("objects",
			mcp.Description("Object names to inspect (all objects when omitted)"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithNumber("str_max_level",
			mcp.Description("Maximum nesting level passed to str()"),
			mcp.DefaultNumber(1),
		),
		mcp.WithNumber("timeout_sec",
			mcp.Description("Maximum run time in seconds"),
			mcp.DefaultNumber(60),
		),
	), ms.handleInspectRObjects)

	add(mcp.NewTool(toolWhichR,
		mcp.WithDescription("Find R executable in PATH"),
	), ms.handleWhichR)

	add(mcp.NewTool(toolListRFiles,
		mcp.WithDescription("List all R script files in the working directory"),
	), ms.handleListRFiles)
}
