package sampler

import "budget-brain/core/types"

// Matrix holds N joint draws on natural scale, stored column-major in
// CPM, CTR, CVR order.
type Matrix struct {
	cols [3][]float64
}

func newMatrix(n int) *Matrix {
	m := &Matrix{}
	for i := range m.cols {
		m.cols[i] = make([]float64, n)
	}
	return m
}

// Len returns the number of rows
func (m *Matrix) Len() int {
	return len(m.cols[0])
}

// Column returns the samples for one metric. The slice is shared with the
// matrix; callers that need to reorder it must copy first.
func (m *Matrix) Column(metric types.Metric) []float64 {
	return m.cols[metric.Column()]
}

// Row returns draw i as (CPM, CTR, CVR)
func (m *Matrix) Row(i int) [3]float64 {
	return [3]float64{m.cols[0][i], m.cols[1][i], m.cols[2][i]}
}

// Rows materialises the matrix as N rows of 3 values
func (m *Matrix) Rows() [][3]float64 {
	rows := make([][3]float64, m.Len())
	for i := range rows {
		rows[i] = m.Row(i)
	}
	return rows
}
