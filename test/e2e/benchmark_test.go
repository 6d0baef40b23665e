package e2e_test

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// generateNestedJSON creates a deeply nested JSON structure for benchmarking
func generateNestedJSON(depth int, width int) map[string]interface{} {
	if depth <= 0 {
		return map[string]interface{}{
			"leaf_value": "data",
			"count":      rand.Intn(100),
			"enabled":    rand.Intn(2) == 1,
		}
	}

	result := map[string]interface{}{"level": depth}
	for i := 0; i < width; i++ {
		result[fmt.Sprintf("nested_%d_%d", depth, i)] = generateNestedJSON(depth-1, width)
	}
	return result
}

// generateOrders creates a document with many array elements to group
func generateOrders(count int) map[string]interface{} {
	statuses := []string{"open", "shipped", "cancelled", "returned"}
	orders := make([]map[string]interface{}, count)
	for i := range orders {
		orders[i] = map[string]interface{}{
			"id":     i,
			"status": statuses[rand.Intn(len(statuses))],
			"region": fmt.Sprintf("r%d", rand.Intn(10)),
			"lines": []map[string]interface{}{
				{"sku": fmt.Sprintf("S-%d", rand.Intn(50)), "qty": rand.Intn(9) + 1},
				{"sku": fmt.Sprintf("S-%d", rand.Intn(50)), "qty": rand.Intn(9) + 1},
			},
		}
	}
	return map[string]interface{}{"store": "bench", "orders": orders}
}

func writeJSON(b *testing.B, path string, v interface{}) {
	b.Helper()
	data, err := json.Marshal(v)
	require.NoError(b, err)
	require.NoError(b, os.WriteFile(path, data, 0644))
}

// BenchmarkDeepNesting benchmarks flattening deeply nested documents
func BenchmarkDeepNesting(b *testing.B) {
	if testing.Short() {
		b.Skip("skipping benchmark in short mode")
	}

	tempDir := b.TempDir()
	for _, depth := range []int{3, 5, 7} {
		b.Run(fmt.Sprintf("Depth_%d", depth), func(b *testing.B) {
			jsonFile := filepath.Join(tempDir, fmt.Sprintf("nested_%d.json", depth))
			writeJSON(b, jsonFile, generateNestedJSON(depth, 3))
			outputFile := filepath.Join(tempDir, fmt.Sprintf("nested_%d.out.json", depth))

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				cmd := exec.Command("go", "run", "../../main.go", "-i", jsonFile, "-o", outputFile, "--flat")
				if output, err := cmd.CombinedOutput(); err != nil {
					b.Fatalf("CLI command failed: %v\n%s", err, output)
				}
			}
		})
	}
}

// BenchmarkGrouping benchmarks restructuring large arrays with and without workers
func BenchmarkGrouping(b *testing.B) {
	if testing.Short() {
		b.Skip("skipping benchmark in short mode")
	}

	tempDir := b.TempDir()
	jsonFile := filepath.Join(tempDir, "orders.json")
	writeJSON(b, jsonFile, generateOrders(5000))

	schemaFile := filepath.Join(tempDir, "schema.yaml")
	schemaContent := `
- key: status
  path: orders.status
  mode: group
  children:
    - key: region
      path: orders.region
      mode: group
      children:
        - key: id
          path: orders.id
        - key: sku
          path: orders.lines.sku
`
	require.NoError(b, os.WriteFile(schemaFile, []byte(schemaContent), 0644))

	for _, workers := range []int{0, 4} {
		b.Run(fmt.Sprintf("Workers_%d", workers), func(b *testing.B) {
			outputFile := filepath.Join(tempDir, fmt.Sprintf("out_%d.json", workers))

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				cmd := exec.Command("go", "run", "../../main.go",
					"-i", jsonFile, "-s", schemaFile, "-o", outputFile,
					"--parallel", fmt.Sprint(workers))
				if output, err := cmd.CombinedOutput(); err != nil {
					b.Fatalf("CLI command failed: %v\n%s", err, output)
				}
			}
		})
	}
}
