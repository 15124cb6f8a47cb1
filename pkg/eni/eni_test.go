package eni

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Scenario 5 (spec.md §8): ENI text parse.
func TestParseTextSingleSlave(t *testing.T) {
	input := []byte("=== Master 0, Slave 2 ===\n" +
		"  Vendor Id:    0x00001097\n" +
		"  Product code:  0x00002406\n" +
		"  Distributed clocks: yes\n")

	slaves, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, slaves, 1)

	s := slaves[0]
	require.Equal(t, 2, s.Position)
	require.Equal(t, uint32(0x1097), s.VendorId)
	require.Equal(t, uint32(0x2406), s.ProductCode)
	require.True(t, s.HasDC)
}

func TestParseTextMultipleSlaves(t *testing.T) {
	input := []byte(
		"=== Master 0, Slave 0 ===\n" +
			"Vendor Id: 0x1097\n" +
			"Product code: 0x2406\n" +
			"Device name: Axis X\n" +
			"=== Master 0, Slave 1 ===\n" +
			"Vendor Id: 3\n" +
			"Product code: 11223344\n" +
			"Device name: Axis Y\n")

	slaves, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, slaves, 2)
	require.Equal(t, "Axis X", slaves[0].Name)
	require.Equal(t, uint32(3), slaves[1].VendorId)
	require.Equal(t, uint32(11223344), slaves[1].ProductCode)
}

// ENI round-trip property (spec.md §8): absent fields fall back to the
// documented defaults, never to zero.
func TestParseTextMissingIdentityFallsBackToDefaults(t *testing.T) {
	input := []byte("=== Master 0, Slave 0 ===\nDevice name: Mystery drive\n")

	slaves, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, slaves, 1)
	require.Equal(t, DefaultVendorId, slaves[0].VendorId)
	require.Equal(t, DefaultProductCode, slaves[0].ProductCode)
}

func TestParseXMLSlaveListWithPdos(t *testing.T) {
	input := []byte(`<EtherCATInfo>
  <Descriptions>
    <Devices>
      <SlaveList>
        <Slave Position="0" VendorId="0x1097" ProductCode="0x2406">
          <RxPdo Index="0x1600">
            <Entry><Index>0x6040</Index><SubIndex>0</SubIndex><BitLen>16</BitLen></Entry>
            <Entry><Index>0x607A</Index><SubIndex>0</SubIndex><BitLen>32</BitLen></Entry>
          </RxPdo>
          <TxPdo Index="0x1A00">
            <Entry><Index>0x6041</Index><SubIndex>0</SubIndex><BitLen>16</BitLen></Entry>
          </TxPdo>
        </Slave>
      </SlaveList>
    </Devices>
  </Descriptions>
</EtherCATInfo>`)

	slaves, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, slaves, 1)

	s := slaves[0]
	require.Equal(t, uint32(0x1097), s.VendorId)
	require.Equal(t, uint32(0x2406), s.ProductCode)
	require.Len(t, s.Rx, 2)
	require.Equal(t, uint16(0x6040), s.Rx[0].Index)
	require.Len(t, s.Tx, 1)
	require.Equal(t, uint16(0x6041), s.Tx[0].Index)
}

func TestParseXMLGenericPdoDirectionByIndexRange(t *testing.T) {
	input := []byte(`<EtherCATInfo><SlaveList><Slave Position="1" VendorId="3" ProductCode="11223344">
  <Pdo Index="0x1601"><Entry><Index>0x6060</Index><SubIndex>0</SubIndex><BitLen>8</BitLen></Entry></Pdo>
  <Pdo Index="0x1A01"><Entry><Index>0x6061</Index><SubIndex>0</SubIndex><BitLen>8</BitLen></Entry></Pdo>
</Slave></SlaveList></EtherCATInfo>`)

	slaves, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, slaves, 1)
	require.Len(t, slaves[0].Rx, 1)
	require.Len(t, slaves[0].Tx, 1)
	require.Equal(t, uint16(0x6060), slaves[0].Rx[0].Index)
	require.Equal(t, uint16(0x6061), slaves[0].Tx[0].Index)
}

func TestParseXMLMissingIdentityFallsBackToDefaults(t *testing.T) {
	input := []byte(`<EtherCATInfo><SlaveList><Slave Position="0"></Slave></SlaveList></EtherCATInfo>`)

	slaves, err := Parse(input)
	require.NoError(t, err)
	require.Len(t, slaves, 1)
	require.Equal(t, DefaultVendorId, slaves[0].VendorId)
	require.Equal(t, DefaultProductCode, slaves[0].ProductCode)
}

func TestParseEmptyInputIsIOError(t *testing.T) {
	_, err := Parse([]byte("   \n"))
	require.Error(t, err)
}
