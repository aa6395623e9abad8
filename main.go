// Command gitsyncd serves git synchronization of API request collections
// over HTTP.
package main

import "github.com/gitsyncd/gitsyncd/internal"

func main() {
	internal.Run()
}
