// Package availablecopies counts the copies of an ISBN that can be lent right now.
package availablecopies
