package commands

var FormatCell = formatCell
