package main

import "strconv"

func greet(n int) string {
	if n == 0 {
		return "hello"
	}
	return "hello " + strconv.Itoa(n)
}
