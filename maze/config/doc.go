// Package config manages the maze library: a directory of maze text files
// plus an optional legend.
//
// Directory Layout:
//
//	mazes/
//	  legend.json   optional character mapping, see grid.Legend
//	  maze1.txt
//	  maze2.txt
//
// A maze's name is its filename without the .txt extension. When
// legend.json is absent the default legend (# . S E) is used. Parsed grids
// are cached; RefreshCache drops the cache and rereads the legend.
//
// Usage:
//
//	manager, err := config.NewManager("mazes")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	g, err := manager.LoadMaze("maze1")
//	mazes, err := manager.ListMazes()
package config
