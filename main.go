// Command nuget-sign-audit measures how many popular NuGet packages are
// author signed.
package main

import "github.com/naka-gawa/nuget-sign-audit/cmd"

func main() {
	cmd.Execute()
}
