package memory_test

import (
	"testing"

	"github.com/aretw0/bargain/pkg/adapters/memory"
	"github.com/aretw0/bargain/pkg/ports"
)

func TestMemoryArchive_Contract(t *testing.T) {
	archive := memory.NewArchive()
	ports.RunArchiveContract(t, archive)
}
