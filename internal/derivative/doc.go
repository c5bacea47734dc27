// Package derivative converts preservation masters into lossless JPEG 2000
// derivatives and verifies them by comparing pixel signatures between source
// and output. A derivative that fails verification is removed and never
// reaches storage.
package derivative
